package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/spf13/cobra"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend catalog events for a set of skills",
	Long:  "Rank catalog events against --skills. Passing --attended switches to the hybrid ranking; --popular ignores skills and ranks by registrations.",
	RunE:  runRecommend,
}

var (
	recommendSkills   []string
	recommendAttended []string
	recommendLimit    int
	recommendPopular  bool
)

func init() {
	recommendCmd.Flags().StringSliceVarP(&recommendSkills, "skills", "s", nil, "Comma-separated user skills")
	recommendCmd.Flags().StringSliceVar(&recommendAttended, "attended", nil, "Comma-separated ids of events the user attended")
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 0, "Number of recommendations (defaults to top_n)")
	recommendCmd.Flags().BoolVar(&recommendPopular, "popular", false, "Rank by registrations instead of skills")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	if !recommendPopular && len(recommendSkills) == 0 {
		return errors.New("--skills is required unless --popular is set")
	}

	ctx := cmd.Context()
	cfg, err := setup(ctx, os.Stderr)
	if err != nil {
		return err
	}
	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Stop()

	var recs []model.Recommendation
	if recommendPopular {
		recs, err = svc.PopularEvents(ctx, recommendLimit)
	} else {
		recs, err = svc.Recommend(ctx, model.RecommendQuery{
			Skills:           recommendSkills,
			AttendedEventIDs: recommendAttended,
			Limit:            recommendLimit,
		})
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"recommendations": recs})
}

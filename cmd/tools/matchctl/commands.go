// cmd/tools/matchctl/commands.go
package main

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"delegation-workers/internal/evaluation"
	"delegation-workers/internal/matching"
	"delegation-workers/internal/models"
)

func newMatchCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank the fixture's candidates against its criteria",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFixture(file)
			if err != nil {
				return err
			}
			now, err := a.scoringTime(f.Now)
			if err != nil {
				return err
			}

			outcome, err := a.engine.FindMatches(f.Criteria.toModel(), f.pool(), now)
			if err != nil {
				return err
			}

			asJSON, err := a.wantJSON()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, outcome)
			}
			return matchesTable(a.out, outcome)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML fixture with [criteria] and [[candidates]]")
	return cmd
}

func newAssignCmd(a *app) *cobra.Command {
	var (
		file     string
		minScore float64
	)
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Pick the best candidate at or above --min-score",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFixture(file)
			if err != nil {
				return err
			}
			now, err := a.scoringTime(f.Now)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min-score") && f.MinScore > 0 {
				minScore = f.MinScore
			}
			if minScore <= 0 {
				return fmt.Errorf("--min-score must be positive, got %v", minScore)
			}

			best, err := a.engine.AutoAssignBestMatch(f.Criteria.toModel(), f.pool(), now, minScore)
			var qualErr *matching.QualificationError
			if stderrors.As(err, &qualErr) {
				if qualErr.BestMatch == nil {
					return fmt.Errorf("no qualifying candidate: nobody scored above %.2f", matching.MinimumMatchScore)
				}
				return fmt.Errorf("no qualifying candidate: best was %s at %.4f, minimum %.2f",
					qualErr.BestMatch.ProviderID, qualErr.BestMatch.MatchScore, qualErr.MinScore)
			}
			if err != nil {
				return err
			}

			asJSON, err := a.wantJSON()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, best)
			}
			return matchDetail(a.out, best)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML fixture with [criteria] and [[candidates]]")
	cmd.Flags().Float64Var(&minScore, "min-score", matching.DefaultAutoAssignMinScore, "minimum match score to assign")
	return cmd
}

type priceResult struct {
	ServiceType    string  `json:"serviceType"`
	LegalArea      string  `json:"legalArea,omitempty"`
	Urgency        string  `json:"urgency"`
	Experience     string  `json:"experience"`
	Hours          float64 `json:"hours"`
	EstimatedPrice float64 `json:"estimatedPrice"`
}

func newPriceCmd(a *app) *cobra.Command {
	var (
		service, area, urgency, experience string
		hours                              float64
	)
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Estimate the price of a work request",
		RunE: func(cmd *cobra.Command, args []string) error {
			var h *float64
			if cmd.Flags().Changed("hours") {
				h = &hours
			}
			price := matching.EstimatePrice(service, area,
				models.UrgencyTier(urgency), models.ExperienceLevel(experience), h)
			res := priceResult{
				ServiceType:    service,
				LegalArea:      area,
				Urgency:        urgency,
				Experience:     experience,
				Hours:          matching.DefaultEstimatedHours,
				EstimatedPrice: price,
			}
			if h != nil && *h > 0 {
				res.Hours = *h
			}

			asJSON, err := a.wantJSON()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, res)
			}
			fmt.Fprintf(a.out, "%s / %s / %s, %.1fh: R$ %.0f\n",
				res.ServiceType, res.Urgency, res.Experience, res.Hours, res.EstimatedPrice)
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "petition", "service type")
	cmd.Flags().StringVar(&area, "area", "", "legal area")
	cmd.Flags().StringVar(&urgency, "urgency", string(models.UrgencyMedium), "urgency tier")
	cmd.Flags().StringVar(&experience, "experience", string(models.ExperiencePleno), "experience level")
	cmd.Flags().Float64Var(&hours, "hours", 0, "estimated hours (default 8)")
	return cmd
}

func newEvaluateCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Aggregate judged test items into an evaluation outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFixture(file)
			if err != nil {
				return err
			}

			outcome, err := evaluation.Aggregate(f.evaluationItems())
			if err != nil {
				return err
			}

			asJSON, err := a.wantJSON()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, outcome)
			}
			return evaluationDetail(a.out, outcome)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML fixture with [[items]]")
	return cmd
}

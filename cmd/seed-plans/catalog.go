package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Teja2142/Hyrind-Backend/internal/plans"
	"github.com/Teja2142/Hyrind-Backend/pkg/db/models"
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

type planEnsurer interface {
	Ensure(ctx context.Context, input plans.CreateInput) (*models.Plan, bool, error)
}

// defaultCatalog is the launch catalog: one mandatory base plan and four add-ons.
var defaultCatalog = []plans.CreateInput{
	{
		Name:        "Profile Marketing Services Fee",
		Type:        enums.PlanTypeBase,
		Description: "Mandatory base subscription for all users. Profile visibility, marketing to recruiters, job listings and basic support.",
		Price:       decimal.RequireFromString("400.00"),
		Mandatory:   true,
		Features: []string{
			"Profile visibility on platform",
			"Professional profile marketing",
			"Access to all job listings",
			"Profile optimization tools",
			"Monthly job alerts",
			"Email support",
		},
	},
	{
		Name:        "Skill Development Training",
		Type:        enums.PlanTypeAddon,
		Description: "Technical and soft skills training with interview preparation and career coaching.",
		Price:       decimal.RequireFromString("150.00"),
		Features: []string{
			"Technical skills training",
			"Soft skills workshops",
			"Interview preparation",
			"Resume enhancement",
			"2 mock interviews per month",
			"Career coaching sessions",
		},
	},
	{
		Name:        "Premium Job Matching",
		Type:        enums.PlanTypeAddon,
		Description: "Priority matching, direct recruiter connections and exclusive openings.",
		Price:       decimal.RequireFromString("200.00"),
		Features: []string{
			"Priority in job matching",
			"Direct recruiter connections",
			"Exclusive job opportunities",
			"Personalized recommendations",
			"Application tracking dashboard",
			"Weekly job market insights",
		},
	},
	{
		Name:        "Career Mentorship Program",
		Type:        enums.PlanTypeAddon,
		Description: "Monthly one-on-one mentorship with industry professionals.",
		Price:       decimal.RequireFromString("250.00"),
		Features: []string{
			"Monthly 1-on-1 mentorship (60 min)",
			"Personalized career roadmap",
			"Industry insights and trends",
			"Networking event access",
			"Salary negotiation coaching",
			"LinkedIn profile optimization",
		},
	},
	{
		Name:        "Certification Assistance",
		Type:        enums.PlanTypeAddon,
		Description: "Guidance, study material and exam preparation for professional certifications.",
		Price:       decimal.RequireFromString("100.00"),
		Features: []string{
			"Certification guidance",
			"Study materials access",
			"Exam preparation support",
			"Certification reimbursement (up to $500/year)",
			"Study group access",
		},
	},
}

// seedCatalog get-or-creates every entry by name. Existing rows are never updated.
func seedCatalog(ctx context.Context, svc planEnsurer, logg *logger.Logger, catalog []plans.CreateInput) (created, existing int, err error) {
	for _, input := range catalog {
		plan, isNew, err := svc.Ensure(ctx, input)
		if err != nil {
			return created, existing, fmt.Errorf("ensure plan %q: %w", input.Name, err)
		}
		planCtx := logg.WithFields(ctx, map[string]any{
			"plan_id":   plan.ID.String(),
			"plan_name": plan.Name,
			"plan_type": string(plan.PlanType),
		})
		if isNew {
			created++
			logg.Info(planCtx, "plan created")
			continue
		}
		existing++
		logg.Info(planCtx, "plan already exists")
	}
	return created, existing, nil
}

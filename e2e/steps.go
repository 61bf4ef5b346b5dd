package e2e

import (
	"github.com/cucumber/godog"

	"pawhub/e2e/steps/admin"
	"pawhub/e2e/steps/auth"
	"pawhub/e2e/steps/catalog"
	"pawhub/e2e/steps/common"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	catalog.RegisterSteps(ctx, tc)
	auth.RegisterSteps(ctx, tc)
	admin.RegisterSteps(ctx, tc)
}

package admin

import (
	"context"
	"net/url"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POSTForm(path string, form url.Values) error
}

// RegisterSteps registers admin back office step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &adminSteps{tc: tc}

	ctx.Step(`^I add a clinic named "([^"]*)" at "([^"]*)"$`, steps.addClinic)
	ctx.Step(`^I rename clinic (\d+) to "([^"]*)"$`, steps.renameClinic)
}

type adminSteps struct {
	tc TestContext
}

func (s *adminSteps) addClinic(ctx context.Context, name, address string) error {
	return s.tc.POSTForm("/admin/clinics", url.Values{"name": {name}, "address": {address}})
}

func (s *adminSteps) renameClinic(ctx context.Context, id int, name string) error {
	return s.tc.POSTForm("/admin/clinics/"+strconv.Itoa(id), url.Values{"name": {name}})
}

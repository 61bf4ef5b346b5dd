package common

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	POSTForm(path string, form url.Values) error
	ResponseContains(text string) bool
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetLastLocation() string
}

// RegisterSteps registers common step definitions used across features
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	// Background steps
	ctx.Step(`^PawHub is running$`, steps.pawhubIsRunning)

	// Generic request steps
	ctx.Step(`^I visit "([^"]*)"$`, steps.visit)

	// Response assertion steps
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the page should show "([^"]*)"$`, steps.pageShouldShow)
	ctx.Step(`^the page should not show "([^"]*)"$`, steps.pageShouldNotShow)
	ctx.Step(`^I should be redirected to "([^"]*)"$`, steps.redirectedTo)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) pawhubIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/health/live"); err != nil {
		return err
	}
	return s.responseStatusShouldBe(ctx, 200)
}

func (s *commonSteps) visit(ctx context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	actualStatus := s.tc.GetLastResponseStatus()
	if actualStatus != expectedStatus {
		return fmt.Errorf("expected status %d but got %d", expectedStatus, actualStatus)
	}
	return nil
}

func (s *commonSteps) pageShouldShow(ctx context.Context, text string) error {
	if !s.tc.ResponseContains(text) {
		return fmt.Errorf("page does not show %q\nResponse: %s", text, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *commonSteps) pageShouldNotShow(ctx context.Context, text string) error {
	if s.tc.ResponseContains(text) {
		return fmt.Errorf("page unexpectedly shows %q", text)
	}
	return nil
}

func (s *commonSteps) redirectedTo(ctx context.Context, location string) error {
	if status := s.tc.GetLastResponseStatus(); status != 303 {
		return fmt.Errorf("expected a 303 redirect but got %d", status)
	}
	if got := s.tc.GetLastLocation(); got != location {
		return fmt.Errorf("expected redirect to %q but got %q", location, got)
	}
	return nil
}

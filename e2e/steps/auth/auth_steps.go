package auth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POSTForm(path string, form url.Values) error
	GetLastResponseStatus() int
	Restart() error
	StoredSessions() int
}

// RegisterSteps registers sign-in and session step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I sign in as "([^"]*)" with password "([^"]*)"$`, steps.signIn)
	ctx.Step(`^I sign in as "([^"]*)" with password "([^"]*)" to reach "([^"]*)"$`, steps.signInTo)
	ctx.Step(`^I sign in to the admin area as "([^"]*)" with password "([^"]*)"$`, steps.signInAdmin)
	ctx.Step(`^I sign out$`, steps.signOut)
	ctx.Step(`^the site restarts$`, steps.restart)
	ctx.Step(`^(\d+) sessions? should be stored$`, steps.storedSessions)
}

type authSteps struct {
	tc TestContext
}

func (s *authSteps) signIn(ctx context.Context, email, password string) error {
	return s.tc.POSTForm("/login", url.Values{"email": {email}, "password": {password}})
}

func (s *authSteps) signInTo(ctx context.Context, email, password, next string) error {
	return s.tc.POSTForm("/login", url.Values{"email": {email}, "password": {password}, "next": {next}})
}

func (s *authSteps) signInAdmin(ctx context.Context, email, password string) error {
	if err := s.tc.POSTForm("/admin/login", url.Values{"email": {email}, "password": {password}}); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 303 {
		return fmt.Errorf("admin sign in failed with status %d", status)
	}
	return nil
}

func (s *authSteps) signOut(ctx context.Context) error {
	return s.tc.POSTForm("/logout", url.Values{})
}

func (s *authSteps) restart(ctx context.Context) error {
	return s.tc.Restart()
}

func (s *authSteps) storedSessions(ctx context.Context, n int) error {
	if got := s.tc.StoredSessions(); got != n {
		return fmt.Errorf("expected %d stored sessions but got %d", n, got)
	}
	return nil
}

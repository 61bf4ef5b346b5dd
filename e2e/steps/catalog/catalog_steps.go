package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	POSTForm(path string, form url.Values) error
	APICalls(path string) int
}

// RegisterSteps registers catalog browsing and booking step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &catalogSteps{tc: tc}

	ctx.Step(`^I search "([^"]*)" for "([^"]*)"$`, steps.search)
	ctx.Step(`^I open page (\d+) of "([^"]*)"$`, steps.openPage)
	ctx.Step(`^the API should have listed "([^"]*)" (\d+) times?$`, steps.apiListed)

	ctx.Step(`^I pick cafe room (\d+) on "([^"]*)" from "([^"]*)" to "([^"]*)" for (\d+) guests$`, steps.pickRoom)
	ctx.Step(`^I confirm the booking with notes "([^"]*)"$`, steps.confirmBooking)
}

type catalogSteps struct {
	tc TestContext

	// draft mirrors what the booking form would post back.
	draft url.Values
}

func (s *catalogSteps) search(ctx context.Context, path, term string) error {
	return s.tc.GET(path + "?" + url.Values{"q": {term}}.Encode())
}

func (s *catalogSteps) openPage(ctx context.Context, page int, path string) error {
	return s.tc.GET(path + "?" + url.Values{"page": {strconv.Itoa(page)}}.Encode())
}

func (s *catalogSteps) apiListed(ctx context.Context, resource string, times int) error {
	if got := s.tc.APICalls("/" + resource); got != times {
		return fmt.Errorf("expected %d list requests for %s but got %d", times, resource, got)
	}
	return nil
}

func (s *catalogSteps) pickRoom(ctx context.Context, roomID int, date, start, end string, guests int) error {
	s.draft = url.Values{
		"date":      {date},
		"startTime": {start},
		"endTime":   {end},
		"guests":    {strconv.Itoa(guests)},
	}
	return s.tc.POSTForm("/cafe/rooms/"+strconv.Itoa(roomID)+"/draft", s.draft)
}

func (s *catalogSteps) confirmBooking(ctx context.Context, notes string) error {
	form := url.Values{"notes": {notes}}
	for k, v := range s.draft {
		form[k] = v
	}
	return s.tc.POSTForm("/booking/confirm", form)
}

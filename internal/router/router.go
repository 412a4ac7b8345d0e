// Package router is the navigation state machine behind the views. Reduce is
// pure: it returns the next state and any side effect the caller must run.
package router

import (
	"trademind/internal/errors"
	"trademind/internal/models"
	"trademind/pkg/utils"
)

// State is the current selection across all views.
type State struct {
	View         models.View         `json:"view"`
	SelectedDate string              `json:"selectedDate,omitempty"`
	DashboardTab models.DashboardTab `json:"dashboardTab"`
	DayTab       models.DayTab       `json:"dayTab"`
	Timeframe    models.Timeframe    `json:"timeframe"`
}

// Initial is the state on startup.
func Initial() State {
	return State{
		View:         models.ViewDashboard,
		DashboardTab: models.TabPerformance,
		DayTab:       models.DayTabTrades,
		Timeframe:    models.TimeframeAllTime,
	}
}

// Action is a user intent.
type Action interface {
	apply(State) (State, Effect, error)
}

// Effect is work the caller performs after a transition.
type Effect interface {
	effect()
}

// EnsureEntry asks the caller to create the day entry before rendering it.
type EnsureEntry struct {
	Date string
}

func (EnsureEntry) effect() {}

// Navigate switches to a view. Leaving the day view clears the selected date.
type Navigate struct {
	View models.View
}

func (a Navigate) apply(s State) (State, Effect, error) {
	if !a.View.Valid() {
		return s, nil, errors.NewValidationError("view", a.View, "unknown view")
	}
	if a.View == models.ViewJournalDay && s.SelectedDate == "" {
		return s, nil, errors.ErrNoSelectedDate
	}
	s.View = a.View
	if a.View != models.ViewJournalDay {
		s.SelectedDate = ""
	}
	return s, nil, nil
}

// OpenDay selects a date and shows its detail view.
type OpenDay struct {
	Date string
}

func (a OpenDay) apply(s State) (State, Effect, error) {
	if !utils.ValidDate(a.Date) {
		return s, nil, errors.NewValidationError("date", a.Date, "expected YYYY-MM-DD")
	}
	s.SelectedDate = a.Date
	s.View = models.ViewJournalDay
	s.DayTab = models.DayTabTrades
	return s, EnsureEntry{Date: a.Date}, nil
}

// SelectDashboardTab picks a dashboard panel and shows the dashboard.
type SelectDashboardTab struct {
	Tab models.DashboardTab
}

func (a SelectDashboardTab) apply(s State) (State, Effect, error) {
	if !a.Tab.Valid() {
		return s, nil, errors.NewValidationError("tab", a.Tab, "unknown dashboard tab")
	}
	s.DashboardTab = a.Tab
	return Navigate{View: models.ViewDashboard}.apply(s)
}

// SelectTimeframe picks the summary window and shows the dashboard.
type SelectTimeframe struct {
	Timeframe models.Timeframe
}

func (a SelectTimeframe) apply(s State) (State, Effect, error) {
	if !a.Timeframe.Valid() {
		return s, nil, errors.NewValidationError("timeframe", a.Timeframe, "unknown timeframe")
	}
	s.Timeframe = a.Timeframe
	return Navigate{View: models.ViewDashboard}.apply(s)
}

// SelectDayTab picks the day detail panel.
type SelectDayTab struct {
	Tab models.DayTab
}

func (a SelectDayTab) apply(s State) (State, Effect, error) {
	if !a.Tab.Valid() {
		return s, nil, errors.NewValidationError("dayTab", a.Tab, "unknown day tab")
	}
	s.DayTab = a.Tab
	return s, nil, nil
}

// Reduce applies action to s. On error the original state is returned unchanged.
func Reduce(s State, action Action) (State, Effect, error) {
	if action == nil {
		return s, nil, nil
	}
	next, eff, err := action.apply(s)
	if err != nil {
		return s, nil, err
	}
	return next, eff, nil
}

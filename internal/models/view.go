package models

// View identifies the screen currently shown.
type View string

const (
	ViewDashboard  View = "dashboard"
	ViewCalendar   View = "calendar"
	ViewJournalDay View = "journal-day"
	ViewJournal    View = "journal"
	ViewScanners   View = "scanners"
	ViewAgents     View = "agents"
)

// Views lists every navigable view.
func Views() []View {
	return []View{ViewDashboard, ViewCalendar, ViewJournalDay, ViewJournal, ViewScanners, ViewAgents}
}

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	for _, known := range Views() {
		if v == known {
			return true
		}
	}
	return false
}

// DashboardTab selects the dashboard panel.
type DashboardTab string

const (
	TabPerformance DashboardTab = "performance"
	TabProfit      DashboardTab = "profit"
	TabDrawdown    DashboardTab = "drawdown"
	TabPositions   DashboardTab = "positions"
	TabTrades      DashboardTab = "trades"
)

// DashboardTabs lists the dashboard tabs in sidebar order.
func DashboardTabs() []DashboardTab {
	return []DashboardTab{TabPerformance, TabProfit, TabDrawdown, TabPositions, TabTrades}
}

// Valid reports whether t is a known dashboard tab.
func (t DashboardTab) Valid() bool {
	for _, known := range DashboardTabs() {
		if t == known {
			return true
		}
	}
	return false
}

// DayTab selects the panel of the day detail view.
type DayTab string

const (
	DayTabTrades     DayTab = "trades"
	DayTabPsychology DayTab = "psychology"
	DayTabAnalysis   DayTab = "analysis"
)

// Valid reports whether t is a known day tab.
func (t DayTab) Valid() bool {
	return t == DayTabTrades || t == DayTabPsychology || t == DayTabAnalysis
}

// Timeframe is the dashboard summary window.
type Timeframe string

const (
	Timeframe15m     Timeframe = "15m"
	Timeframe1h      Timeframe = "1h"
	Timeframe1M      Timeframe = "1M"
	Timeframe1y      Timeframe = "1y"
	TimeframeAllTime Timeframe = "at"
)

// Timeframes lists the timeframes in selector order.
func Timeframes() []Timeframe {
	return []Timeframe{Timeframe15m, Timeframe1h, Timeframe1M, Timeframe1y, TimeframeAllTime}
}

// Valid reports whether tf is a known timeframe.
func (tf Timeframe) Valid() bool {
	for _, known := range Timeframes() {
		if tf == known {
			return true
		}
	}
	return false
}

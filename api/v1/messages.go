// Package v1 holds the wire messages and service descriptor of the
// caseops.v1.CaseDashboard gRPC service. Messages travel with the JSON codec
// from pkg/grpc/codec.
package v1

// Selections maps a filterable column name to the chosen values. A column
// that is absent is not filtered; a present column with no values matches
// nothing.
type Selections map[string][]string

type Thresholds struct {
	MaxLatenessDays     float64 `json:"max_lateness_days"`
	ProactivePctOptimal float64 `json:"proactive_pct_optimal"`
	ExcludeLate         bool    `json:"exclude_late,omitempty"`
}

type FilterOptionsRequest struct{}

type FilterOption struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

type FilterOptionsResponse struct {
	Source  string          `json:"source"`
	NoData  bool            `json:"no_data"`
	Options []*FilterOption `json:"options"`
}

type DashboardRequest struct {
	Selections Selections  `json:"selections,omitempty"`
	Thresholds *Thresholds `json:"thresholds,omitempty"`
}

func (x *DashboardRequest) GetSelections() Selections {
	if x != nil {
		return x.Selections
	}
	return nil
}

func (x *DashboardRequest) GetThresholds() *Thresholds {
	if x != nil {
		return x.Thresholds
	}
	return nil
}

type LoadStats struct {
	Rows                int64  `json:"rows"`
	CoercedDates        int64  `json:"coerced_dates"`
	CoercedNumbers      int64  `json:"coerced_numbers"`
	InvariantViolations int64  `json:"invariant_violations"`
	Encoding            string `json:"encoding"`
}

type Kpi struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Case is one filtered record. Nullable durations are omitted when unknown.
type Case struct {
	Technology             string   `json:"technology"`
	Status                 string   `json:"status"`
	Priority               string   `json:"priority"`
	OpenedDate             string   `json:"opened_date,omitempty"`
	ClosedDate             string   `json:"closed_date,omitempty"`
	DaysOpen               *float64 `json:"days_open,omitempty"`
	InitialResponseMinutes *float64 `json:"initial_response_minutes,omitempty"`
	FinalResolutionDays    *float64 `json:"final_resolution_days,omitempty"`
	RmaCount               int64    `json:"rma_count"`
	Owner                  string   `json:"owner,omitempty"`
	ContractType           string   `json:"contract_type,omitempty"`
	Label                  string   `json:"label"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type DailyCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

type Distribution struct {
	Count  int64   `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

type MonthlyAggregate struct {
	Month               string  `json:"month"`
	Label               string  `json:"label"`
	Technology          string  `json:"technology"`
	TotalRequests       int64   `json:"total_requests"`
	HighPriority        int64   `json:"high_priority"`
	MeanInitialResponse float64 `json:"mean_initial_response"`
	MeanResolutionDays  float64 `json:"mean_resolution_days"`
	ProactiveCount      int64   `json:"proactive_count"`
	ReactiveCount       int64   `json:"reactive_count"`
	ProactivePct        float64 `json:"proactive_pct"`
	EfficiencyScore     float64 `json:"efficiency_score"`
	Status              string  `json:"status"`
}

type MonthlyAggregatesResponse struct {
	Source     string              `json:"source"`
	NoData     bool                `json:"no_data"`
	Thresholds *Thresholds         `json:"thresholds"`
	Aggregates []*MonthlyAggregate `json:"aggregates"`
	Skipped    int64               `json:"skipped_undated"`
	Excluded   int64               `json:"excluded_late"`
}

type DashboardResponse struct {
	Source           string                     `json:"source"`
	NoData           bool                       `json:"no_data"`
	Stats            *LoadStats                 `json:"stats"`
	Kpis             []*Kpi                     `json:"kpis"`
	Cases            []*Case                    `json:"cases"`
	StatusBreakdown  []*CategoryCount           `json:"status_breakdown"`
	TechnologyCounts []*CategoryCount           `json:"technology_counts"`
	DailyTrend       []*DailyCount              `json:"daily_trend"`
	AgingBuckets     []*CategoryCount           `json:"aging_buckets"`
	InitialResponse  *Distribution              `json:"initial_response"`
	DaysOpen         *Distribution              `json:"days_open"`
	Monthly          *MonthlyAggregatesResponse `json:"monthly"`
}

type ExportRequest struct {
	Selections Selections `json:"selections,omitempty"`
}

func (x *ExportRequest) GetSelections() Selections {
	if x != nil {
		return x.Selections
	}
	return nil
}

type ExportResponse struct {
	Filename string `json:"filename"`
	Rows     int64  `json:"rows"`
	Csv      []byte `json:"csv"`
}

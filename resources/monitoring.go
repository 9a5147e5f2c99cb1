package resources

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/jrsteele09/go-waterres-client/apiclient"
	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
	"github.com/pkg/errors"
)

const (
	isoQueryLayout   = "2006-01-02T15:04:05"
	plainQueryLayout = "2006-01-02 15:04:05"
)

// Reading holds the fields every monitoring series shares.
type Reading struct {
	ID                   int64     `json:"id"`
	StationID            int64     `json:"stationId"`
	StationName          string    `json:"stationName"`
	StationCode          string    `json:"stationCode,omitempty"`
	MonitoringTime       Timestamp `json:"monitoringTime"`
	DataQuality          int       `json:"dataQuality"`
	DataQualityText      string    `json:"dataQualityText,omitempty"`
	CollectionMethod     string    `json:"collectionMethod,omitempty"`
	CollectionMethodText string    `json:"collectionMethodText,omitempty"`
	DataSource           string    `json:"dataSource,omitempty"`
	Remark               string    `json:"remark,omitempty"`
}

type FlowReading struct {
	Reading
	FlowRate       float64 `json:"flowRate"`
	CumulativeFlow float64 `json:"cumulativeFlow"`
}

type WaterLevelReading struct {
	Reading
	WaterLevel float64 `json:"waterLevel"`
}

type WaterQualityReading struct {
	Reading
	WaterTemperature float64 `json:"waterTemperature"`
	Turbidity        float64 `json:"turbidity"`
	PHValue          float64 `json:"phValue"`
	Conductivity     float64 `json:"conductivity"`
	DissolvedOxygen  float64 `json:"dissolvedOxygen"`
	AmmoniaNitrogen  float64 `json:"ammoniaNitrogen"`
	CODValue         float64 `json:"codValue"`
	ResidualChlorine float64 `json:"residualChlorine"`
}

type RainfallReading struct {
	Reading
	Rainfall           float64 `json:"rainfall"`
	RainfallIntensity  float64 `json:"rainfallIntensity"`
	CumulativeRainfall float64 `json:"cumulativeRainfall"`
}

type WaterConditionReading struct {
	Reading
	WaterLevel      float64 `json:"waterLevel"`
	StorageCapacity float64 `json:"storageCapacity"`
	FloodLimitDiff  float64 `json:"floodLimitDiff"`
	Inflow          float64 `json:"inflow"`
	Outflow         float64 `json:"outflow"`
}

// Import rows. MonitoringTime is sent as text, as read from a spreadsheet.
type (
	FlowImportRow struct {
		RowNumber      int     `json:"rowNumber"`
		MonitoringTime string  `json:"monitoringTime" validate:"required"`
		StationCode    string  `json:"stationCode" validate:"required"`
		StationName    string  `json:"stationName,omitempty"`
		InstantFlow    float64 `json:"instantFlow" validate:"gte=0"`
		CumulativeFlow float64 `json:"cumulativeFlow" validate:"gte=0"`
	}

	WaterLevelImportRow struct {
		RowNumber        int     `json:"rowNumber"`
		StationCode      string  `json:"stationCode" validate:"required"`
		StationName      string  `json:"stationName,omitempty"`
		MonitoringTime   string  `json:"monitoringTime" validate:"required"`
		WaterLevel       float64 `json:"waterLevel"`
		DataQuality      int     `json:"dataQuality,omitempty"`
		CollectionMethod string  `json:"collectionMethod,omitempty"`
		DataSource       string  `json:"dataSource,omitempty"`
		Remark           string  `json:"remark,omitempty"`
	}

	WaterQualityImportRow struct {
		RowNumber        int     `json:"rowNumber"`
		StationCode      string  `json:"stationCode" validate:"required"`
		StationName      string  `json:"stationName,omitempty"`
		MonitoringTime   string  `json:"monitoringTime" validate:"required"`
		WaterTemperature float64 `json:"waterTemperature"`
		Turbidity        float64 `json:"turbidity" validate:"gte=0"`
		PHValue          float64 `json:"phValue" validate:"gte=0,lte=14"`
		Conductivity     float64 `json:"conductivity" validate:"gte=0"`
		DissolvedOxygen  float64 `json:"dissolvedOxygen" validate:"gte=0"`
		AmmoniaNitrogen  float64 `json:"ammoniaNitrogen" validate:"gte=0"`
		CODValue         float64 `json:"codValue" validate:"gte=0"`
		ResidualChlorine float64 `json:"residualChlorine" validate:"gte=0"`
		DataQuality      int     `json:"dataQuality,omitempty"`
		CollectionMethod string  `json:"collectionMethod,omitempty"`
		DataSource       string  `json:"dataSource,omitempty"`
		Remark           string  `json:"remark,omitempty"`
	}

	RainfallImportRow struct {
		RowNumber          int     `json:"rowNumber"`
		MonitoringTime     string  `json:"monitoringTime" validate:"required"`
		StationCode        string  `json:"stationCode" validate:"required"`
		Rainfall           float64 `json:"rainfall" validate:"gte=0"`
		RainfallIntensity  float64 `json:"rainfallIntensity" validate:"gte=0"`
		CumulativeRainfall float64 `json:"cumulativeRainfall" validate:"gte=0"`
	}
)

// MonitoringQuery filters a monitoring series. Zero values are not sent.
type MonitoringQuery struct {
	Page             int        `json:"page,omitempty"`
	Size             int        `json:"size,omitempty"`
	StationID        int64      `json:"stationId,omitempty"`
	StartTime        *Timestamp `json:"startTime,omitempty"`
	EndTime          *Timestamp `json:"endTime,omitempty"`
	DataQuality      *int       `json:"dataQuality,omitempty"`
	CollectionMethod string     `json:"collectionMethod,omitempty"`
	DataSource       string     `json:"dataSource,omitempty"`
	Sort             string     `json:"sort,omitempty"`
}

func (q MonitoringQuery) values(layout string) url.Values {
	values := ListQuery{Page: q.Page, Size: q.Size, Sort: q.Sort}.Values()
	optionalID(values, "stationId", q.StationID)
	if q.StartTime != nil && !q.StartTime.IsZero() {
		values.Set("startTime", q.StartTime.Format(layout))
	}
	if q.EndTime != nil && !q.EndTime.IsZero() {
		values.Set("endTime", q.EndTime.Format(layout))
	}
	if q.DataQuality != nil {
		values.Set("dataQuality", strconv.Itoa(*q.DataQuality))
	}
	if q.CollectionMethod != "" {
		values.Set("collectionMethod", q.CollectionMethod)
	}
	if q.DataSource != "" {
		values.Set("dataSource", q.DataSource)
	}
	return values
}

// ChartQuery selects the chart window. Interval is "hour", "day" or "month";
// DataType picks the plotted measure. Empty values use the server defaults.
type ChartQuery struct {
	StationID int64
	StartTime time.Time
	EndTime   time.Time
	Interval  string
	DataType  string
}

func (q ChartQuery) values(layout string) url.Values {
	values := url.Values{}
	optionalID(values, "stationId", q.StationID)
	if !q.StartTime.IsZero() {
		values.Set("startTime", q.StartTime.Format(layout))
	}
	if !q.EndTime.IsZero() {
		values.Set("endTime", q.EndTime.Format(layout))
	}
	if q.Interval != "" {
		values.Set("interval", q.Interval)
	}
	if q.DataType != "" {
		values.Set("dataType", q.DataType)
	}
	return values
}

type ChartData struct {
	Labels      []string  `json:"labels"`
	Values      []float64 `json:"values"`
	DatasetName string    `json:"datasetName,omitempty"`
	StationName string    `json:"stationName,omitempty"`
	Interval    string    `json:"interval,omitempty"`
	Unit        string    `json:"unit,omitempty"`
}

type ImportError struct {
	RowNumber   int    `json:"rowNumber"`
	StationCode string `json:"stationCode,omitempty"`
	Error       string `json:"error"`
}

// ImportResult summarises an import. Series that report successCount and
// failCount are mapped onto the same fields.
type ImportResult struct {
	TotalRows     int           `json:"totalRows"`
	SuccessRows   int           `json:"successRows"`
	ErrorRows     int           `json:"errorRows"`
	DuplicateRows int           `json:"duplicateRows"`
	SuccessCount  int           `json:"successCount"`
	FailCount     int           `json:"failCount"`
	Errors        []ImportError `json:"errors,omitempty"`
}

func (r *ImportResult) normalize(submitted int) {
	if r.SuccessRows == 0 && r.SuccessCount > 0 {
		r.SuccessRows = r.SuccessCount
	}
	if r.ErrorRows == 0 && r.FailCount > 0 {
		r.ErrorRows = r.FailCount
	}
	if r.TotalRows == 0 {
		r.TotalRows = submitted
	}
}

// Series is one monitoring data set: T is a reading and R an import row.
// Empty paths mark operations the series does not offer.
type Series[T, R any] struct {
	client     *apiclient.Client
	dataPath   string
	chartPath  string
	exportPath string
	importPath string
	timeLayout string
}

func (s Series[T, R]) List(ctx context.Context, q MonitoringQuery) (*Page[T], error) {
	return sub[*Page[T]](ctx, s.client, apiclient.Get(s.dataPath, q.values(s.timeLayout)))
}

func (s Series[T, R]) Chart(ctx context.Context, q ChartQuery) (*ChartData, error) {
	return sub[*ChartData](ctx, s.client, apiclient.Get(s.chartPath, q.values(s.timeLayout)))
}

// Export downloads the readings matching q as a file. The server caps an
// export at 10000 rows.
func (s Series[T, R]) Export(ctx context.Context, q MonitoringQuery) (*apiclient.Response, error) {
	return postDownload(ctx, s.client, s.exportPath, q)
}

// Import uploads rows. Rows failing validation are rejected before sending.
func (s Series[T, R]) Import(ctx context.Context, rows []R) (*ImportResult, error) {
	return s.importRows(ctx, rows, nil)
}

func (s Series[T, R]) importRows(ctx context.Context, rows []R, query url.Values) (*ImportResult, error) {
	if s.importPath == "" {
		return nil, errors.Wrapf(apperrors.ErrUnsupported, "[Series.Import] %s has no import", s.dataPath)
	}
	if len(rows) == 0 {
		return nil, errors.Wrap(apperrors.ErrValidation, "[Series.Import] no rows to import")
	}
	for i, row := range rows {
		if err := validatePayload(row); err != nil {
			return nil, errors.Wrapf(err, "[Series.Import] row %d", i+1)
		}
	}

	req := apiclient.Post(s.importPath, rows)
	req.Query = query
	result, err := sub[*ImportResult](ctx, s.client, req)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &ImportResult{}
	}
	result.normalize(len(rows))
	return result, nil
}

// RainfallSeries imports rows against a single station.
type RainfallSeries struct {
	Series[RainfallReading, RainfallImportRow]
}

func (s RainfallSeries) ImportForStation(ctx context.Context, stationID int64, rows []RainfallImportRow) (*ImportResult, error) {
	if stationID <= 0 {
		return nil, errors.Wrap(apperrors.ErrValidation, "[RainfallSeries.ImportForStation] stationID is required")
	}
	return s.importRows(ctx, rows, url.Values{"stationId": {strconv.FormatInt(stationID, 10)}})
}

// Import is not offered without a station; use ImportForStation.
func (s RainfallSeries) Import(ctx context.Context, rows []RainfallImportRow) (*ImportResult, error) {
	return nil, errors.Wrap(apperrors.ErrUnsupported, "[RainfallSeries.Import] rainfall imports need a station")
}

type Monitoring struct {
	Flow           Series[FlowReading, FlowImportRow]
	WaterLevel     Series[WaterLevelReading, WaterLevelImportRow]
	WaterQuality   Series[WaterQualityReading, WaterQualityImportRow]
	Rainfall       RainfallSeries
	WaterCondition Series[WaterConditionReading, struct{}]
}

func newMonitoring(client *apiclient.Client) *Monitoring {
	return &Monitoring{
		Flow: Series[FlowReading, FlowImportRow]{
			client:     client,
			dataPath:   "/monitoring/flow-data",
			chartPath:  "/monitoring/flow-chart-data",
			exportPath: "/monitoring/flow-data/export",
			importPath: "/monitoring/flow-data/import",
			timeLayout: isoQueryLayout,
		},
		WaterLevel: Series[WaterLevelReading, WaterLevelImportRow]{
			client:     client,
			dataPath:   "/monitoring/water-level-data",
			chartPath:  "/monitoring/water-level-chart-data",
			exportPath: "/monitoring/water-level-data/export",
			importPath: "/monitoring/water-level-data/import",
			timeLayout: plainQueryLayout,
		},
		WaterQuality: Series[WaterQualityReading, WaterQualityImportRow]{
			client:     client,
			dataPath:   "/monitoring/water-quality-data",
			chartPath:  "/monitoring/water-quality-chart-data",
			exportPath: "/monitoring/water-quality/export",
			importPath: "/monitoring/water-quality/import",
			timeLayout: plainQueryLayout,
		},
		Rainfall: RainfallSeries{Series: Series[RainfallReading, RainfallImportRow]{
			client:     client,
			dataPath:   "/monitoring/rainfall-data",
			chartPath:  "/monitoring/rainfall-chart-data",
			exportPath: "/monitoring/rainfall/export",
			importPath: "/monitoring/rainfall-data/import",
			timeLayout: plainQueryLayout,
		}},
		WaterCondition: Series[WaterConditionReading, struct{}]{
			client:     client,
			dataPath:   "/monitoring/water-condition",
			chartPath:  "/monitoring/water-condition/chart",
			exportPath: "/monitoring/water-condition/export",
			timeLayout: plainQueryLayout,
		},
	}
}

package resources_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-waterres-client/internal/apitest"
	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
	"github.com/jrsteele09/go-waterres-client/resources"
	"github.com/stretchr/testify/require"
)

func TestFacilities(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	list := func(names ...string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			items := make([]map[string]any, len(names))
			for i, n := range names {
				items[i] = map[string]any{"id": i + 1, "name": n}
			}
			apitest.WriteData(w, map[string]any{"records": items, "total": len(items), "current": 1, "size": 100})
		}
	}
	f.backend.Protected(http.MethodGet, resources.EngineeringServicePath+"/pumping-stations", list("North Station"))
	f.backend.Protected(http.MethodGet, resources.EngineeringServicePath+"/water-plants", list("East Plant", "West Plant"))
	f.backend.Protected(http.MethodGet, resources.EngineeringServicePath+"/reservoirs", list("Dam Lake"))
	f.backend.Protected(http.MethodGet, resources.EngineeringServicePath+"/reservoirs/available", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, []map[string]any{{"id": 1, "name": "Dam Lake", "reservoirCode": "R-01"}})
	})
	f.backend.Protected(http.MethodGet, resources.EngineeringServicePath+"/facility-type-map", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, map[string]string{"pumping_station": "Pumping station", "reservoir": "Reservoir"})
	})

	names, err := f.api.Facilities.Names(ctx)
	require.NoError(t, err)
	require.Equal(t, []resources.FacilityName{
		{Name: "North Station", Kind: resources.KindPumpingStation},
		{Name: "East Plant", Kind: resources.KindWaterPlant},
		{Name: "West Plant", Kind: resources.KindWaterPlant},
		{Name: "Dam Lake", Kind: resources.KindReservoir},
	}, names)
	rec, _ := f.backend.LastRequest(http.MethodGet, resources.EngineeringServicePath+"/water-plants")
	require.Equal(t, "100", rec.Query.Get("size"))

	stations, err := f.api.Facilities.AvailablePumpingStations(ctx)
	require.NoError(t, err)
	require.Len(t, stations, 1)

	reservoirs, err := f.api.Facilities.AvailableReservoirs(ctx)
	require.NoError(t, err)
	require.Equal(t, "R-01", reservoirs[0].ReservoirCode)

	types, err := f.api.Facilities.TypeMap(ctx)
	require.NoError(t, err)
	require.Equal(t, "Reservoir", types["reservoir"])

	_, err = f.api.Facilities.PumpingStations.Create(ctx, resources.PumpingStation{Name: "South", StationCode: "PS-9", Longitude: 200})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestInspectionRecords(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	type upload struct {
		Data  map[string]any
		Files map[string]string
	}
	var got upload
	f.backend.Protected(http.MethodPost, resources.InspectionRecordsPath, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			apitest.WriteError(w, http.StatusBadRequest, "not multipart", nil)
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("data")), &got.Data); err != nil {
			apitest.WriteError(w, http.StatusBadRequest, "bad data part", nil)
			return
		}
		got.Files = map[string]string{}
		for _, fh := range r.MultipartForm.File["files"] {
			file, err := fh.Open()
			if err != nil {
				apitest.WriteError(w, http.StatusBadRequest, "bad file part", nil)
				return
			}
			content, _ := io.ReadAll(file)
			_ = file.Close()
			got.Files[fh.Filename] = string(content)
		}
		apitest.WriteData(w, map[string]any{"id": 30, "facilityType": "reservoir", "facilityId": 1, "issueFlag": 1, "recordTime": "2024-06-01 08:00:00"})
	})
	f.backend.Protected(http.MethodPatch, resources.InspectionRecordsPath+"/30/resolve", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, nil)
	})
	f.backend.Protected(http.MethodPatch, resources.InspectionTasksPath+"/6/status", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, nil)
	})

	_, err := f.api.Inspections.CreateRecord(ctx, resources.InspectionRecordInput{FacilityType: "reservoir", FacilityID: 1, InspectorID: 1, DeviceStatus: "fault", IssueFlag: 1})
	require.ErrorIs(t, err, apperrors.ErrValidation, "an issue needs a description")

	record, err := f.api.Inspections.CreateRecord(ctx,
		resources.InspectionRecordInput{FacilityType: "reservoir", FacilityID: 1, InspectorID: 1, DeviceStatus: "fault", IssueFlag: 1, IssueDescription: "gate seal leaking"},
		resources.Upload{FileName: "gate.jpg", ContentType: "image/jpeg", Content: []byte("jpeg")},
		resources.Upload{FileName: "notes.txt", ContentType: "text/plain", Content: []byte("notes")},
	)
	require.NoError(t, err)
	require.EqualValues(t, 30, record.ID)
	require.Equal(t, "gate seal leaking", got.Data["issueDescription"])
	require.Equal(t, map[string]string{"gate.jpg": "jpeg", "notes.txt": "notes"}, got.Files)

	require.NoError(t, f.api.Inspections.ResolveRecord(ctx, 30, "seal replaced"))
	rec, _ := f.backend.LastRequest(http.MethodPatch, resources.InspectionRecordsPath+"/30/resolve")
	require.Equal(t, "seal replaced", rec.Query.Get("resolution"))

	require.NoError(t, f.api.Inspections.SetTaskStatus(ctx, 6, "completed"))
	rec, _ = f.backend.LastRequest(http.MethodPatch, resources.InspectionTasksPath+"/6/status")
	require.Equal(t, "completed", rec.Query.Get("status"))
}

func TestWarnings(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.backend.Protected(http.MethodGet, resources.WarningThresholdsPath+"/check-duplicate", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		apitest.WriteData(w, map[string]bool{"exists": q.Get("stationName") == "North Station" && q.Get("monitoringItem") == "water_level"})
	})
	f.backend.Protected(http.MethodPut, resources.WarningRecordsPath+"/14/resolve", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, nil)
	})
	f.backend.Protected(http.MethodGet, resources.WarningRecordsPath+"/trend", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, []map[string]any{{"date": "2024-06-01", "count": 3}, {"date": "2024-06-02", "count": 1}})
	})
	f.backend.Protected(http.MethodGet, resources.WarningRecordsPath+"/locations", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, []string{"North Station", "Dam Lake"})
	})

	exists, err := f.api.Warnings.ThresholdExists(ctx, "North Station", "water_level", 0)
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, f.api.Warnings.Resolve(ctx, 14, "level back to normal"))
	var body map[string]string
	f.lastBody(t, http.MethodPut, resources.WarningRecordsPath+"/14/resolve", &body)
	require.Equal(t, "level back to normal", body["resolveRemark"])

	trend, err := f.api.Warnings.Trend(ctx, "day", 7)
	require.NoError(t, err)
	require.Equal(t, []resources.TrendPoint{{Date: "2024-06-01", Count: 3}, {Date: "2024-06-02", Count: 1}}, trend)
	rec, _ := f.backend.LastRequest(http.MethodGet, resources.WarningRecordsPath+"/trend")
	require.Equal(t, "7", rec.Query.Get("days"))

	locations, err := f.api.Warnings.Locations(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"North Station", "Dam Lake"}, locations)
}

func TestThresholdBreached(t *testing.T) {
	upper, lower := 12.5, 3.0
	th := resources.Threshold{UpperLimit: &upper, LowerLimit: &lower}
	require.True(t, th.Breached(13))
	require.True(t, th.Breached(2.9))
	require.False(t, th.Breached(12.5))
	require.False(t, resources.Threshold{}.Breached(1000))
}

func TestMonitoringSeries(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	start := resources.Timestamp{Time: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	quality := 1

	f.backend.Protected(http.MethodGet, "/monitoring/flow-data", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, apitest.Page([]map[string]any{{"id": 1, "stationId": 3, "stationName": "North", "flowRate": 2.4, "monitoringTime": "2024-06-01T01:00:00"}}, 1))
	})
	f.backend.Protected(http.MethodGet, "/monitoring/rainfall-data", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, apitest.Page([]map[string]any{}, 0))
	})
	f.backend.Protected(http.MethodGet, "/monitoring/water-level-chart-data", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, map[string]any{"labels": []string{"08:00", "09:00"}, "values": []float64{101.2, 101.5}, "unit": "m"})
	})
	f.backend.Protected(http.MethodPost, "/monitoring/flow-data/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="flow_monitoring_data.csv"`)
		apitest.WriteBlob(w, "application/octet-stream", []byte("station,flow\n"))
	})
	f.backend.Protected(http.MethodPost, "/monitoring/flow-data/import", func(w http.ResponseWriter, r *http.Request) {
		var rows []map[string]any
		readJSON(t, r, &rows)
		apitest.WriteData(w, map[string]any{"totalRows": len(rows), "successRows": len(rows) - 1, "errorRows": 1, "errors": []map[string]any{{"rowNumber": 2, "error": "unknown station"}}})
	})
	f.backend.Protected(http.MethodPost, "/monitoring/rainfall-data/import", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, map[string]any{"successCount": 2, "failCount": 0})
	})

	t.Run("flow list uses ISO query times", func(t *testing.T) {
		page, err := f.api.Monitoring.Flow.List(ctx, resources.MonitoringQuery{StationID: 3, StartTime: &start, DataQuality: &quality})
		require.NoError(t, err)
		require.InDelta(t, 2.4, page.Items[0].FlowRate, 0.0001)
		require.Equal(t, "North", page.Items[0].StationName)

		rec, _ := f.backend.LastRequest(http.MethodGet, "/monitoring/flow-data")
		require.Equal(t, "2024-06-01T00:00:00", rec.Query.Get("startTime"))
		require.Equal(t, "3", rec.Query.Get("stationId"))
		require.Equal(t, "1", rec.Query.Get("dataQuality"))
	})

	t.Run("rainfall list uses plain query times", func(t *testing.T) {
		_, err := f.api.Monitoring.Rainfall.List(ctx, resources.MonitoringQuery{StartTime: &start})
		require.NoError(t, err)
		rec, _ := f.backend.LastRequest(http.MethodGet, "/monitoring/rainfall-data")
		require.Equal(t, "2024-06-01 00:00:00", rec.Query.Get("startTime"))
	})

	t.Run("chart", func(t *testing.T) {
		chart, err := f.api.Monitoring.WaterLevel.Chart(ctx, resources.ChartQuery{StationID: 3, Interval: "hour"})
		require.NoError(t, err)
		require.Equal(t, []string{"08:00", "09:00"}, chart.Labels)
		require.Equal(t, "m", chart.Unit)
	})

	t.Run("export", func(t *testing.T) {
		resp, err := f.api.Monitoring.Flow.Export(ctx, resources.MonitoringQuery{StationID: 3, Size: 500})
		require.NoError(t, err)
		require.Equal(t, "station,flow\n", string(resp.Blob))
		require.Equal(t, "flow_monitoring_data.csv", resources.AttachmentName(resp, "flow.csv"))

		var sent map[string]any
		f.lastBody(t, http.MethodPost, "/monitoring/flow-data/export", &sent)
		require.Equal(t, map[string]any{"stationId": float64(3), "size": float64(500)}, sent)
	})

	t.Run("import", func(t *testing.T) {
		_, err := f.api.Monitoring.Flow.Import(ctx, nil)
		require.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = f.api.Monitoring.Flow.Import(ctx, []resources.FlowImportRow{{RowNumber: 1, StationCode: "F-1"}})
		require.ErrorIs(t, err, apperrors.ErrValidation)

		result, err := f.api.Monitoring.Flow.Import(ctx, []resources.FlowImportRow{
			{RowNumber: 1, StationCode: "F-1", MonitoringTime: "2024-06-01 08:00:00", InstantFlow: 2.1},
			{RowNumber: 2, StationCode: "F-X", MonitoringTime: "2024-06-01 08:00:00", InstantFlow: 1.7},
		})
		require.NoError(t, err)
		require.Equal(t, 2, result.TotalRows)
		require.Equal(t, 1, result.SuccessRows)
		require.Equal(t, "unknown station", result.Errors[0].Error)
	})

	t.Run("rainfall import needs a station", func(t *testing.T) {
		rows := []resources.RainfallImportRow{
			{RowNumber: 1, StationCode: "R-1", MonitoringTime: "2024-06-01 08:00:00", Rainfall: 1.2},
			{RowNumber: 2, StationCode: "R-1", MonitoringTime: "2024-06-01 09:00:00", Rainfall: 0.4},
		}
		_, err := f.api.Monitoring.Rainfall.Import(ctx, rows)
		require.ErrorIs(t, err, apperrors.ErrUnsupported)

		result, err := f.api.Monitoring.Rainfall.ImportForStation(ctx, 5, rows)
		require.NoError(t, err)
		require.Equal(t, 2, result.TotalRows)
		require.Equal(t, 2, result.SuccessRows)
		rec, _ := f.backend.LastRequest(http.MethodPost, "/monitoring/rainfall-data/import")
		require.Equal(t, "5", rec.Query.Get("stationId"))
	})

	t.Run("water condition has no import", func(t *testing.T) {
		_, err := f.api.Monitoring.WaterCondition.Import(ctx, []struct{}{{}})
		require.ErrorIs(t, err, apperrors.ErrUnsupported)
	})
}

func TestMapOverview(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.backend.Protected(http.MethodGet, resources.MapPath+"/overview", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, map[string]any{
			"facilities":         []map[string]any{{"id": 1, "name": "North Station", "type": "pumping_station", "longitude": 112.1, "latitude": 31.0}},
			"monitoringStations": []map[string]any{{"stationId": 3, "stationName": "North gauge", "latestData": map[string]any{"waterLevel": 101.5}}},
			"warnings":           []map[string]any{{"id": 14, "warningLocation": "Dam Lake", "warningLevel": "2", "warningStatus": "ongoing"}},
			"stats":              map[string]any{"facilityCount": 12, "ongoingWarnings": 1},
		})
	})

	overview, err := f.api.Map.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, overview.Facilities, 1)
	require.Equal(t, "Dam Lake", overview.Warnings[0].WarningLocation)
	require.JSONEq(t, `{"waterLevel":101.5}`, string(overview.MonitoringStations[0].LatestData))
	require.Equal(t, 12, overview.Stats.FacilityCount)
	require.Empty(t, overview.ManagementSystems)
}

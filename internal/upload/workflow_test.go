package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/scoutdeck/scoutdeck/internal/metrics"
	"github.com/scoutdeck/scoutdeck/internal/prefs"
	"github.com/scoutdeck/scoutdeck/internal/query"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploaderDeps struct {
	client *statsapi.MockClient
	cache  *query.Cache
	prefs  *prefs.MockStore
	usage  *metrics.MockUsage
	metr   *metrics.Mock
}

func setupUploader(t *testing.T) (Uploader, *uploaderDeps) {
	t.Helper()

	deps := &uploaderDeps{
		client: statsapi.NewMockClient(),
		prefs:  prefs.NewMock(),
		usage:  metrics.NewMockUsage(),
		metr:   metrics.NewMock(),
	}
	deps.cache = query.New(deps.metr)
	deps.client.ListTournamentsFunc = func() ([]statsapi.Tournament, error) {
		return leagueFixture(), nil
	}
	return New(deps.client, deps.cache, deps.prefs, deps.usage, deps.metr), deps
}

func xlsx(name string) File {
	return File{Name: name, Size: 2048, Data: strings.NewReader("stub spreadsheet")}
}

func TestRun_UploadsBothSlices(t *testing.T) {
	uploader, deps := setupUploader(t)
	deps.client.UploadFileFunc = func(params statsapi.UploadParams, file io.Reader) (statsapi.UploadReport, error) {
		return statsapi.UploadReport{FileName: params.FileName, TournamentID: params.TournamentID, TotalRows: 120}, nil
	}

	result, err := uploader.Run(context.Background(), Request{
		TournamentID: 1,
		Season:       "2025",
		Round:        4,
		Files: map[statsapi.SliceKind]File{
			statsapi.SliceTotal: xlsx("mfl_round4_total.xlsx"),
			statsapi.SlicePer90: xlsx("mfl_round4_per90.xlsx"),
		},
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	_, err = uuid.Parse(result.ID)
	assert.NoError(t, err, "batch IDs are UUIDs")
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed)

	require.Len(t, result.Slots, 2)
	total := result.Slots[0]
	assert.Equal(t, statsapi.SliceTotal, total.Kind, "totals are processed first")
	assert.Equal(t, StatusDone, total.Status)
	assert.Equal(t, []SlotStatus{StatusIdle, StatusValidating, StatusUploading, StatusDone}, total.Transitions)
	require.NotNil(t, total.Report)
	assert.Equal(t, 120, total.Report.TotalRows)

	require.Len(t, deps.client.UploadFileCalls, 2)
	assert.Equal(t, "2025", deps.client.UploadFileCalls[0].Season)
	assert.Equal(t, 4, deps.client.UploadFileCalls[0].Round)

	// Both slices land in the upload history.
	require.Len(t, deps.prefs.SaveLastUploadCalls, 2)
	assert.Equal(t, statsapi.SliceTotal, deps.prefs.SaveLastUploadCalls[0].Kind)
	assert.Equal(t, 4, deps.prefs.SaveLastUploadCalls[0].Round)

	counters, err := deps.usage.GetAll()
	require.NoError(t, err)
	assert.Equal(t, 2, counters[metrics.UsageUploads])
	assert.Equal(t, 1, deps.metr.Uploads(string(statsapi.SliceTotal), "success"))
	assert.Equal(t, 1, deps.metr.Uploads(string(statsapi.SlicePer90), "success"))

	// Every cached view is stale after an import; the tournament list the
	// detector loaded must be gone too.
	assert.Equal(t, 0, deps.cache.Len())
}

func TestRun_SlotFailuresAreIndependent(t *testing.T) {
	uploader, deps := setupUploader(t)
	deps.client.UploadFileFunc = func(params statsapi.UploadParams, file io.Reader) (statsapi.UploadReport, error) {
		return statsapi.UploadReport{FileName: params.FileName}, nil
	}

	result, err := uploader.Run(context.Background(), Request{
		TournamentID: 1,
		Season:       "2025",
		Round:        4,
		Files: map[statsapi.SliceKind]File{
			statsapi.SliceTotal: xlsx("mfl_round4_total.pdf"),
			statsapi.SlicePer90: xlsx("mfl_round4_per90.xlsx"),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)

	total := result.Slots[0]
	assert.Equal(t, StatusFailed, total.Status)
	assert.ErrorIs(t, total.Err, ErrFileType)
	assert.Equal(t, []SlotStatus{StatusIdle, StatusValidating, StatusFailed}, total.Transitions)

	per90 := result.Slots[1]
	assert.Equal(t, StatusDone, per90.Status)

	// Only the valid file reached the backend.
	require.Len(t, deps.client.UploadFileCalls, 1)
	assert.Equal(t, "mfl_round4_per90.xlsx", deps.client.UploadFileCalls[0].FileName)
	assert.Equal(t, 1, deps.metr.Uploads(string(statsapi.SliceTotal), "failure"))
	assert.Equal(t, 1, deps.metr.Uploads(string(statsapi.SlicePer90), "success"))
}

func TestRun_ValidationStopsBeforeNetwork(t *testing.T) {
	t.Run("oversized file", func(t *testing.T) {
		uploader, deps := setupUploader(t)

		result, err := uploader.Run(context.Background(), Request{
			TournamentID: 1,
			Season:       "2025",
			Round:        4,
			Files: map[statsapi.SliceKind]File{
				statsapi.SliceTotal: {Name: "mfl_total.xlsx", Size: MaxFileSize + 1, Data: strings.NewReader("x")},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		assert.ErrorIs(t, result.Slots[0].Err, ErrFileTooLarge)
		assert.Empty(t, deps.client.UploadFileCalls)
		assert.Equal(t, 0, deps.metr.Invalidations(), "nothing succeeded, nothing is invalidated")
	})

	t.Run("missing file data", func(t *testing.T) {
		uploader, deps := setupUploader(t)

		result, err := uploader.Run(context.Background(), Request{
			TournamentID: 1,
			Season:       "2025",
			Round:        4,
			Files: map[statsapi.SliceKind]File{
				statsapi.SliceTotal: {Name: "mfl_total.xlsx"},
			},
		})

		require.NoError(t, err)
		assert.ErrorIs(t, result.Slots[0].Err, ErrNoFile)
		assert.Empty(t, deps.client.UploadFileCalls)
	})

	t.Run("unknown slice kind", func(t *testing.T) {
		uploader, deps := setupUploader(t)

		result, err := uploader.Run(context.Background(), Request{
			TournamentID: 1,
			Season:       "2025",
			Round:        4,
			Files: map[statsapi.SliceKind]File{
				statsapi.SliceKind("MEDIAN"): xlsx("mfl_total.xlsx"),
			},
		})

		require.NoError(t, err)
		assert.ErrorIs(t, result.Slots[0].Err, statsapi.ErrUnknownKind)
		assert.Empty(t, deps.client.UploadFileCalls)
	})
}

func TestRun_RejectsBatchesMissingBasics(t *testing.T) {
	uploader, _ := setupUploader(t)
	files := map[statsapi.SliceKind]File{statsapi.SliceTotal: xlsx("mfl_total.xlsx")}

	_, err := uploader.Run(context.Background(), Request{TournamentID: 1, Round: 4, Files: files})
	assert.ErrorIs(t, err, ErrSeasonMissing)

	_, err = uploader.Run(context.Background(), Request{TournamentID: 1, Season: "2025", Files: files})
	assert.ErrorIs(t, err, ErrRoundMissing)

	_, err = uploader.Run(context.Background(), Request{TournamentID: 1, Season: "2025", Round: 4})
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestRun_TournamentMismatchFailsTheSlot(t *testing.T) {
	uploader, deps := setupUploader(t)

	// File named for MFL, uploaded against YFL-1.
	result, err := uploader.Run(context.Background(), Request{
		TournamentID: 2,
		Season:       "2025",
		Round:        4,
		Files: map[statsapi.SliceKind]File{
			statsapi.SliceTotal: xlsx("mfl_round4_total.xlsx"),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	slot := result.Slots[0]
	assert.ErrorIs(t, slot.Err, ErrTournamentMismatch)
	assert.Contains(t, slot.Err.Error(), "MFL")
	assert.Empty(t, deps.client.UploadFileCalls)
}

func TestRun_DetectionSkippedWhenTournamentsUnavailable(t *testing.T) {
	uploader, deps := setupUploader(t)
	deps.client.ListTournamentsFunc = func() ([]statsapi.Tournament, error) {
		return nil, errors.New("backend down")
	}
	deps.client.UploadFileFunc = func(params statsapi.UploadParams, file io.Reader) (statsapi.UploadReport, error) {
		return statsapi.UploadReport{FileName: params.FileName}, nil
	}

	result, err := uploader.Run(context.Background(), Request{
		TournamentID: 2,
		Season:       "2025",
		Round:        4,
		Files: map[statsapi.SliceKind]File{
			statsapi.SliceTotal: xlsx("mfl_round4_total.xlsx"),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded, "uploads go ahead when the guard rail cannot run")
}

func TestRun_BackendFailureMarksSlotFailed(t *testing.T) {
	uploader, deps := setupUploader(t)
	deps.client.UploadFileFunc = func(params statsapi.UploadParams, file io.Reader) (statsapi.UploadReport, error) {
		return statsapi.UploadReport{}, &statsapi.APIError{Code: "import_failed", Message: "bad sheet", StatusCode: 500}
	}

	result, err := uploader.Run(context.Background(), Request{
		TournamentID: 1,
		Season:       "2025",
		Round:        4,
		Files: map[statsapi.SliceKind]File{
			statsapi.SliceTotal: xlsx("mfl_round4_total.xlsx"),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	slot := result.Slots[0]
	assert.Equal(t, StatusFailed, slot.Status)
	assert.Equal(t, []SlotStatus{StatusIdle, StatusValidating, StatusUploading, StatusFailed}, slot.Transitions)
	assert.Empty(t, deps.prefs.SaveLastUploadCalls)
	assert.Equal(t, 1, deps.metr.Uploads(string(statsapi.SliceTotal), "failure"))

	counters, err := deps.usage.GetAll()
	require.NoError(t, err)
	assert.Zero(t, counters[metrics.UsageUploads])
}

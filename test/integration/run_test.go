package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apprun "github.com/stylepost/stylepost/internal/app/run"
	appstatus "github.com/stylepost/stylepost/internal/app/status"
	"github.com/stylepost/stylepost/internal/browser/fake"
	"github.com/stylepost/stylepost/internal/log"
	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/protocol"
	"github.com/stylepost/stylepost/internal/selectors"
	"github.com/stylepost/stylepost/internal/storage/sqlite"
)

func integrationTable() selectors.Table {
	return selectors.Table{
		Version: "test",
		Login: selectors.Login{
			URL:           "https://portal.example.com/login/",
			UserIDInput:   "#loginId",
			PasswordInput: "#password",
			SignInButton:  "#signIn",
			DashboardNav:  "#globalNavi",
		},
		SalonSelection: selectors.SalonSelection{
			ListTable: "table.salons",
			Row:       "tbody tr",
			IDCell:    "td:nth-child(1)",
			NameCell:  "td:nth-child(2)",
			RowLink:   "a",
		},
		Navigation: selectors.Navigation{
			ListingMenu: "#menuListing",
			StyleMenu:   "#menuStyle",
		},
		StyleForm: selectors.StyleForm{
			NewStyleButton: "#newStyle",
			Image: selectors.ImageModal{
				UploadArea:   "#dropArea",
				Container:    "#imageModal",
				FileInput:    "#imageFile",
				SubmitButton: "#imageSubmit",
			},
			StylistSelect:       "#stylist",
			CommentArea:         "#comment",
			StyleNameInput:      "#styleName",
			CategoryLadiesRadio: "#catLadies",
			CategoryMensRadio:   "#catMens",
			LengthSelectLadies:  "#lenLadies",
			LengthSelectMens:    "#lenMens",
			MenuDetailArea:      "#menuDetail",
			Coupon: selectors.CouponModal{
				OpenButton:    "#couponOpen",
				Container:     "#couponModal",
				LabelTemplate: "#couponModal label[title='%s']",
				ApplyButton:   "#couponApply",
			},
			Hashtag: selectors.HashtagBox{
				Input:     "#hashTag",
				AddButton: "#hashTagAdd",
			},
			RegisterButton:   "#register",
			CompleteText:     "登録が完了しました",
			BackToListButton: "#backToList",
		},
	}
}

// seedBatch writes a records file plus images and creates the pending task.
func seedBatch(t *testing.T, repo *sqlite.Repository, n int) model.Task {
	t.Helper()

	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	require.NoError(t, os.MkdirAll(imagesDir, 0o755))

	content := "image,stylist,style_name,category,length,hashtags\n"
	for i := 0; i < n; i++ {
		content += fmt.Sprintf("img-%d.jpg,Tanaka,style-%d,ladies,ショート,bob\n", i, i)
		require.NoError(t, os.WriteFile(filepath.Join(imagesDir, fmt.Sprintf("img-%d.jpg", i)), []byte("img"), 0o644))
	}

	recordsPath := filepath.Join(dir, "records.csv")
	require.NoError(t, os.WriteFile(recordsPath, []byte(content), 0o644))

	task := model.Task{
		ID:          fmt.Sprintf("task-%d", time.Now().UnixNano()),
		Status:      model.TaskStatusPending,
		RecordsPath: recordsPath,
		ImagesDir:   imagesDir,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.CreateTask(context.Background(), task))

	return task
}

func newRunService(t *testing.T, repo *sqlite.Repository, driver *fake.Driver) *apprun.Service {
	t.Helper()

	proto, err := protocol.NewSalonBoard(protocol.SalonBoardConfig{
		Driver:        driver,
		Selectors:     integrationTable(),
		HashtagSettle: time.Millisecond,
		Logger:        log.Noop,
	})
	require.NoError(t, err)

	svc, err := apprun.NewService(apprun.ServiceConfig{
		Driver:     driver,
		Protocol:   proto,
		Repository: repo,
		Logger:     log.Noop,
	})
	require.NoError(t, err)

	return svc
}

// TestFullBatchRun drives the run service against the full real stack (CSV
// loading, salon board protocol, SQLite persistence) with only the browser
// faked.
func TestFullBatchRun(t *testing.T) {
	ctx := context.Background()

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	task := seedBatch(t, repo, 3)

	driver, err := fake.NewDriver(fake.DriverConfig{})
	require.NoError(t, err)

	svc := newRunService(t, repo, driver)

	got, err := svc.Run(ctx, apprun.Request{
		TaskID:      task.ID,
		Credentials: model.Credentials{UserID: "salon01", Password: "secret"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.TaskStatusSucceeded, got.Status)
	assert.Equal(t, 3, got.CompletedItems)
	assert.True(t, driver.Closed())

	// The status service sees the same persisted state.
	statusSvc, err := appstatus.NewService(appstatus.ServiceConfig{Repository: repo, Logger: log.Noop})
	require.NoError(t, err)

	st, err := statusSvc.Status(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusSucceeded, st.Task.Status)
	require.Len(t, st.Items, 3)
	for _, it := range st.Items {
		assert.Equal(t, model.ItemStatusSucceeded, it.Status)
	}
}

// TestInterruptAndResume interrupts a run mid-batch through the persisted
// flag and resumes it with a fresh service, checking the already posted
// records are not posted twice.
func TestInterruptAndResume(t *testing.T) {
	ctx := context.Background()

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	task := seedBatch(t, repo, 3)

	// The first record's registration confirmation flags the interrupt, like
	// a concurrent `stylepost interrupt` call would.
	driver, err := fake.NewDriver(fake.DriverConfig{})
	require.NoError(t, err)
	driver.OnCall("wait-text", func() {
		got, gerr := repo.GetTask(ctx, task.ID)
		require.NoError(t, gerr)
		if got.Status == model.TaskStatusProcessing {
			got.Status = model.TaskStatusInterrupted
			require.NoError(t, repo.UpdateTask(ctx, *got))
		}
	})

	svc := newRunService(t, repo, driver)
	got, err := svc.Run(ctx, apprun.Request{
		TaskID:      task.ID,
		Credentials: model.Credentials{UserID: "salon01", Password: "secret"},
	})
	require.NoError(t, err)

	require.Equal(t, model.TaskStatusInterrupted, got.Status)
	require.Equal(t, 1, got.CompletedItems)
	assert.True(t, driver.Closed())

	// Resume with a fresh driver and service.
	resumeDriver, err := fake.NewDriver(fake.DriverConfig{})
	require.NoError(t, err)

	resumeSvc := newRunService(t, repo, resumeDriver)
	got, err = resumeSvc.Run(ctx, apprun.Request{
		TaskID:      task.ID,
		Credentials: model.Credentials{UserID: "salon01", Password: "secret"},
		Resume:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, model.TaskStatusSucceeded, got.Status)
	assert.Equal(t, 3, got.CompletedItems)

	items, err := repo.ListItems(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, it := range items {
		assert.Equal(t, model.ItemStatusSucceeded, it.Status)
	}
}

package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typeline/internal/model"
	mock_postgres "github.com/verte-zerg/typeline/internal/storage/postgres/mock"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newSessionMock(ctrl *gomock.Controller, setupMock func(*mock_postgres.MockQueryI)) *SessionR {
	db := mock_postgres.NewMockQueryI(ctrl)
	if setupMock != nil {
		setupMock(db)
	}
	return &SessionR{db: db, now: func() time.Time { return fixedNow }}
}

func TestSessionR_UserForToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		token   string
		f       func(*mock_postgres.MockQueryI)
		want    string
		wantErr error
		anyErr  bool
	}{
		{
			name:  "success",
			token: "tok",
			f: func(mqi *mock_postgres.MockQueryI) {
				mqi.EXPECT().GetContext(gomock.Any(), gomock.Any(), gomock.Any(), "tok").
					DoAndReturn(func(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
						*dest.(*sessionRow) = sessionRow{UserID: "user-1", Expires: fixedNow.Add(time.Hour)}
						return nil
					})
			},
			want: "user-1",
		},
		{
			name:  "expired session",
			token: "tok",
			f: func(mqi *mock_postgres.MockQueryI) {
				mqi.EXPECT().GetContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
						*dest.(*sessionRow) = sessionRow{UserID: "user-1", Expires: fixedNow.Add(-time.Minute)}
						return nil
					})
			},
			wantErr: ErrSessionNotFound,
		},
		{
			name:  "unknown token",
			token: "tok",
			f: func(mqi *mock_postgres.MockQueryI) {
				mqi.EXPECT().GetContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(sql.ErrNoRows)
			},
			wantErr: ErrSessionNotFound,
		},
		{
			name:    "empty token skips the query",
			token:   "",
			wantErr: ErrSessionNotFound,
		},
		{
			name:  "database error",
			token: "tok",
			f: func(mqi *mock_postgres.MockQueryI) {
				mqi.EXPECT().GetContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("conn reset"))
			},
			anyErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := newSessionMock(ctrl, tt.f)
			got, err := repo.UserForToken(context.Background(), tt.token)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			if tt.anyErr {
				require.Error(t, err)
				assert.NotErrorIs(t, err, ErrSessionNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHistoryR_Insert(t *testing.T) {
	t.Parallel()

	item := model.HistoryItem{
		ID:           "0b9c4d3e-8f0a-4b53-9d36-2c1c7b0f5a11",
		WPM:          42,
		Accuracy:     97.5,
		FinishReason: model.FinishTime,
		StartedAt:    fixedNow.Add(-time.Minute),
		CompletedAt:  fixedNow,
	}

	tests := []struct {
		name    string
		f       func(*mock_postgres.MockQueryI)
		want    bool
		wantErr bool
	}{
		{
			name: "new row",
			f: func(mqi *mock_postgres.MockQueryI) {
				mqi.EXPECT().ExecContext(gomock.Any(), gomock.Any(), gomock.Any()).Return(driver.RowsAffected(1), nil)
			},
			want: true,
		},
		{
			name: "duplicate id is ignored",
			f: func(mqi *mock_postgres.MockQueryI) {
				mqi.EXPECT().ExecContext(gomock.Any(), gomock.Any(), gomock.Any()).Return(driver.RowsAffected(0), nil)
			},
			want: false,
		},
		{
			name: "error exec",
			f: func(mqi *mock_postgres.MockQueryI) {
				mqi.EXPECT().ExecContext(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("error exec"))
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			db := mock_postgres.NewMockQueryI(ctrl)
			tt.f(db)
			repo := NewHistoryRepository(db)

			got, err := repo.Insert(context.Background(), "user-1", item)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHistoryR_ListByUser(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rows := []historyRow{
		{ID: "a", WPM: 50, Accuracy: 99, Category: "science", Title: "Comet", CompletedAt: fixedNow.Add(-time.Hour)},
		{ID: "b", WPM: 55, Accuracy: 98, Category: "world", Title: "Ferry", CompletedAt: fixedNow},
	}
	db := mock_postgres.NewMockQueryI(ctrl)
	db.EXPECT().SelectContext(gomock.Any(), gomock.AssignableToTypeOf(&[]historyRow{}), gomock.Any(), "user-1", defaultListLimit).
		DoAndReturn(func(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
			slice := dest.(*[]historyRow)
			*slice = append(*slice, rows...)
			return nil
		})

	got, err := NewHistoryRepository(db).ListByUser(context.Background(), "user-1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "science", got[0].Article.Category)
	assert.Equal(t, "Ferry", got[1].Article.Title)
}

func TestMigrate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	db := mock_postgres.NewMockQueryI(ctrl)
	db.EXPECT().ExecContext(gomock.Any(), gomock.Any()).Return(driver.RowsAffected(0), nil).Times(2)
	require.NoError(t, Migrate(context.Background(), db))

	failing := mock_postgres.NewMockQueryI(ctrl)
	failing.EXPECT().ExecContext(gomock.Any(), gomock.Any()).Return(nil, errors.New("denied"))
	require.Error(t, Migrate(context.Background(), failing))
}

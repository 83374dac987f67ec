package worker_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports/mocks"
	"go.trai.ch/aqtcache/internal/engine/worker"
	"go.uber.org/mock/gomock"
)

type eventFixture struct {
	reg      *worker.Registration
	logger   *mocks.MockLogger
	clients  *mocks.MockClients
	notifier *mocks.MockNotifier
}

func newEventFixture(t *testing.T) eventFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := eventFixture{
		logger:   mocks.NewMockLogger(ctrl),
		clients:  mocks.NewMockClients(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
	}
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	f.logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	f.clients.EXPECT().Claim(gomock.Any(), "v1").Return(nil)

	deps, _ := newDeps(newFakeOrigin())
	deps.Logger = f.logger
	deps.Clients = f.clients
	deps.Notifier = f.notifier
	f.reg = worker.NewRegistration(deps)

	_, err := f.reg.Register(context.Background(), newGeneration("v1"))
	require.NoError(t, err)
	return f
}

func TestDispatch_Push(t *testing.T) {
	f := newEventFixture(t)

	f.notifier.EXPECT().Show(gomock.Any(), domain.Notification{
		Title: "Trade closed",
		Body:  domain.DefaultNotificationBody,
		Icon:  domain.DefaultNotificationIcon,
		URL:   "/trades/42",
	}).DoAndReturn(func(_ context.Context, n domain.Notification) (domain.Notification, error) {
		n.ID = "n1"
		return n, nil
	})

	res, err := f.reg.Dispatch(context.Background(), domain.Event{
		Kind:    domain.EventPush,
		Payload: []byte(`{"title":"Trade closed","url":"/trades/42"}`),
	})
	require.NoError(t, err)
	assert.True(t, res.Handled)
	require.NotNil(t, res.Notification)
	assert.Equal(t, "n1", res.Notification.ID)
}

func TestDispatch_PushMalformedUsesDefaults(t *testing.T) {
	f := newEventFixture(t)

	f.logger.EXPECT().Warn(gomock.Any()).Times(1)
	f.notifier.EXPECT().Show(gomock.Any(), domain.Notification{
		Title: domain.DefaultNotificationTitle,
		Body:  domain.DefaultNotificationBody,
		Icon:  domain.DefaultNotificationIcon,
		URL:   domain.DefaultNotificationURL,
	}).DoAndReturn(func(_ context.Context, n domain.Notification) (domain.Notification, error) {
		return n, nil
	})

	res, err := f.reg.Dispatch(context.Background(), domain.Event{
		Kind:    domain.EventPush,
		Payload: []byte(`{not json`),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Notification)
	assert.Equal(t, "AQT Journal", res.Notification.Title)
}

func TestDispatch_NotificationClickFocusesExisting(t *testing.T) {
	f := newEventFixture(t)

	f.notifier.EXPECT().Close(gomock.Any(), "n1").Return(domain.Notification{ID: "n1", URL: "/trades/42"}, nil)
	f.clients.EXPECT().MatchAll(gomock.Any()).Return([]domain.Client{
		{ID: "c1", URL: originURL + "/"},
		{ID: "c2", URL: originURL + "/trades/42"},
	})
	f.clients.EXPECT().Focus(gomock.Any(), "c2").Return(domain.Client{ID: "c2", URL: originURL + "/trades/42", Focused: true}, nil)

	res, err := f.reg.Dispatch(context.Background(), domain.Event{
		Kind:           domain.EventNotificationClick,
		NotificationID: "n1",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Client)
	assert.Equal(t, "c2", res.Client.ID)
	assert.True(t, res.Client.Focused)
}

func TestDispatch_NotificationClickOpensWindow(t *testing.T) {
	f := newEventFixture(t)

	f.notifier.EXPECT().Close(gomock.Any(), "n1").Return(domain.Notification{ID: "n1", URL: "/"}, nil)
	f.clients.EXPECT().MatchAll(gomock.Any()).Return([]domain.Client{{ID: "c1", URL: originURL + "/settings"}})
	f.clients.EXPECT().OpenWindow(gomock.Any(), originURL+"/").Return(domain.Client{ID: "c9", URL: originURL + "/"}, nil)

	res, err := f.reg.Dispatch(context.Background(), domain.Event{
		Kind:           domain.EventNotificationClick,
		NotificationID: "n1",
	})
	require.NoError(t, err)
	assert.Equal(t, "c9", res.Client.ID)
}

func TestDispatch_NotificationClickUnknown(t *testing.T) {
	f := newEventFixture(t)

	f.notifier.EXPECT().Close(gomock.Any(), "missing").Return(domain.Notification{}, domain.ErrNotificationNotFound)

	_, err := f.reg.Dispatch(context.Background(), domain.Event{
		Kind:           domain.EventNotificationClick,
		NotificationID: "missing",
	})
	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
}

func TestDispatch_Sync(t *testing.T) {
	f := newEventFixture(t)

	res, err := f.reg.Dispatch(context.Background(), domain.Event{Kind: domain.EventSync, Tag: "sync-trades"})
	require.NoError(t, err)
	assert.True(t, res.Handled)
}

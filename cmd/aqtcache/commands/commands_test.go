package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/aqtcache/cmd/aqtcache/commands"
	"go.trai.ch/aqtcache/internal/app"
	"go.trai.ch/aqtcache/internal/build"
)

type mockApp struct {
	serveFunc      func(ctx context.Context, opts app.ServeOptions) error
	partitionsFunc func(ctx context.Context, opts app.ConfigOptions) ([]app.PartitionInfo, error)
	purgeFunc      func(ctx context.Context, opts app.PurgeOptions) ([]string, error)
}

func (m *mockApp) Serve(ctx context.Context, opts app.ServeOptions) error {
	if m.serveFunc != nil {
		return m.serveFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Partitions(ctx context.Context, opts app.ConfigOptions) ([]app.PartitionInfo, error) {
	if m.partitionsFunc != nil {
		return m.partitionsFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockApp) Purge(ctx context.Context, opts app.PurgeOptions) ([]string, error) {
	if m.purgeFunc != nil {
		return m.purgeFunc(ctx, opts)
	}
	return nil, nil
}

func TestCommands_Serve(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.ServeOptions
		mock := &mockApp{
			serveFunc: func(_ context.Context, opts app.ServeOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"serve", "--config", "deploy/aqtcache.yaml", "--listen", ":9000", "--no-watch", "-v", "--json"})
		require.NoError(t, cli.Execute(context.Background()))

		assert.Equal(t, app.ServeOptions{
			ConfigOptions: app.ConfigOptions{ConfigPath: "deploy/aqtcache.yaml"},
			Listen:        ":9000",
			Watch:         false,
			Verbose:       true,
			JSON:          true,
		}, captured)
	})

	t.Run("watches by default", func(t *testing.T) {
		var captured app.ServeOptions
		mock := &mockApp{
			serveFunc: func(_ context.Context, opts app.ServeOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"serve"})
		require.NoError(t, cli.Execute(context.Background()))
		assert.True(t, captured.Watch)
		assert.Empty(t, captured.ConfigPath)
	})

	t.Run("returns error on serve failure", func(t *testing.T) {
		mock := &mockApp{
			serveFunc: func(_ context.Context, _ app.ServeOptions) error {
				return errors.New("address in use")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"serve"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "address in use")
	})

	t.Run("rejects arguments", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		cli.SetArgs([]string{"serve", "extra"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		require.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Partitions(t *testing.T) {
	t.Run("prints a table", func(t *testing.T) {
		mock := &mockApp{
			partitionsFunc: func(_ context.Context, _ app.ConfigOptions) ([]app.PartitionInfo, error) {
				return []app.PartitionInfo{
					{Name: "aqt-static-v1", Entries: 4},
					{Name: "aqt-static-v2", Entries: 4, Current: true},
				}, nil
			},
		}

		cli := commands.New(mock)
		out := new(bytes.Buffer)
		cli.SetOutput(out, out)
		cli.SetArgs([]string{"partitions"})
		require.NoError(t, cli.Execute(context.Background()))

		assert.Equal(t,
			"NAME           ENTRIES  CURRENT\n"+
				"aqt-static-v1  4        \n"+
				"aqt-static-v2  4        *\n",
			out.String())
	})

	t.Run("empty storage", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		out := new(bytes.Buffer)
		cli.SetOutput(out, out)
		cli.SetArgs([]string{"partitions"})
		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "no partitions\n", out.String())
	})
}

func TestCommands_Purge(t *testing.T) {
	var captured app.PurgeOptions
	mock := &mockApp{
		purgeFunc: func(_ context.Context, opts app.PurgeOptions) ([]string, error) {
			captured = opts
			return []string{"aqt-static-v1", "aqt-journal-v1"}, nil
		},
	}

	cli := commands.New(mock)
	out := new(bytes.Buffer)
	cli.SetOutput(out, out)
	cli.SetArgs([]string{"purge", "--all", "-c", "aqtcache.yaml"})
	require.NoError(t, cli.Execute(context.Background()))

	assert.True(t, captured.All)
	assert.Equal(t, "aqtcache.yaml", captured.ConfigPath)
	assert.Equal(t, "deleted 2 partition(s)\n", out.String())
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{})
	out := new(bytes.Buffer)
	cli.SetOutput(out, out)
	cli.SetArgs([]string{"version"})
	require.NoError(t, cli.Execute(context.Background()))

	assert.Equal(t, "aqtcache version "+build.Version+" (commit: "+build.Commit+", date: "+build.Date+")\n", out.String())
}

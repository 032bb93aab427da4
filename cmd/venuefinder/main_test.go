package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/poiesic/venuefinder/ai"
	"github.com/poiesic/venuefinder/ai/mock"
	"github.com/poiesic/venuefinder/config"
	"github.com/poiesic/venuefinder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const reviewsCSV = "place_firm_id,place_name,place_category,place_rating,place_address,author,rating,text,date\n" +
	"A,Кофейня Зерно,Кофейни,4.8,\"Алматы, Абая 10\",Алия,5,Вкусный кофе и уютная атмосфера,2024-03-15\n" +
	"B,Кофейня Пепел,Кофейни,3.1,\"Алматы, Абая 12\",Иван,1,\"Кофе ужасный, грязный зал\",2024-03-16\n" +
	"C,Барбершоп Борода,Барбершопы,4.2,\"Алматы, Достык 5\",Ержан,5,\"Стрижка быстрая, мастер аккуратный\",2024-03-17\n"

type cliEnv struct {
	dir      string
	config   string
	store    string
	textfile string
}

// setupCLI writes a dataset and config into a temp dir and replaces the
// model provider with mocks built by factory.
func setupCLI(t *testing.T, factory func() ai.AIProvider) *cliEnv {
	t.Helper()
	for _, name := range []string{config.EnvConfig, config.EnvStore, config.EnvEmbeddingModel, config.EnvWorkers} {
		t.Setenv(name, "")
	}

	env := &cliEnv{dir: t.TempDir()}
	env.store = filepath.Join(env.dir, "store")
	env.textfile = filepath.Join(env.dir, "venuefinder.prom")
	reviews := filepath.Join(env.dir, "reviews.csv")
	require.NoError(t, os.WriteFile(reviews, []byte(reviewsCSV), 0644))

	env.config = filepath.Join(env.dir, "venuefinder.yaml")
	yaml := fmt.Sprintf("store:\n  path: %s\ndataset:\n  reviews: %s\nmetrics:\n  textfile: %s\n", env.store, reviews, env.textfile)
	require.NoError(t, os.WriteFile(env.config, []byte(yaml), 0644))

	if factory == nil {
		factory = mock.NewMockProvider
	}
	orig := newProvider
	newProvider = func(*ai.Config) (ai.AIProvider, error) { return factory(), nil }
	t.Cleanup(func() { newProvider = orig })
	return env
}

func (env *cliEnv) run(args ...string) (string, error) {
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"venuefinder", "--config", env.config, "--log-level", "error"}, args...))
	return out.String(), err
}

func TestAppCommands(t *testing.T) {
	app := newApp()

	names := make([]string, 0, len(app.Commands))
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"build", "search", "status"}, names)

	build := app.Command("build")
	require.NotNil(t, build)
	for _, flag := range build.Flags {
		if f, ok := flag.(*cli.IntFlag); ok && f.Name == "max-retries" {
			assert.Equal(t, -1, f.Value, "unset defers to build.max_retries")
		}
	}
}

func TestBuildSearchStatus(t *testing.T) {
	env := setupCLI(t, nil)

	out, err := env.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "no index has been built")

	_, err = env.run("search", "кофе")
	assert.ErrorIs(t, err, core.ErrNoIndex)

	out, err = env.run("build", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "Index built")
	assert.Contains(t, out, "3 reviews, 3 venues")
	assert.Contains(t, out, "3 accepted, 0 rejected, 0 filtered")

	out, err = env.run("build")
	require.NoError(t, err)
	assert.Contains(t, out, "Index is up to date")

	out, err = env.run("search", "--top-n", "1", "кофе")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Кофейня Зерно")
	assert.Contains(t, out, "Вкусный кофе и уютная атмосфера")
	assert.Contains(t, out, "[positive")
	assert.NotContains(t, out, "2. ")

	out, err = env.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "mock-encoder")
	assert.Contains(t, out, "skipped at")

	metrics, err := os.ReadFile(env.textfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "venuefinder_searches_total")
}

func TestJSONOutput(t *testing.T) {
	env := setupCLI(t, nil)

	out, err := env.run("--json", "build")
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, false, report["skipped"])
	assert.Equal(t, 3.0, report["reviews"])

	out, err = env.run("--json", "search", "--top-n", "2", "кофе")
	require.NoError(t, err)
	var results []resultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, core.VenueID("A"), results[0].VenueID)
	require.NotEmpty(t, results[0].Evidence)
	assert.Equal(t, "positive", results[0].Evidence[0].Sentiment)

	out, err = env.run("--json", "status")
	require.NoError(t, err)
	var status struct {
		Store     string            `json:"store"`
		Active    *core.Manifest    `json:"active"`
		LastBuild *core.BuildRecord `json:"last_build"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, env.store, status.Store)
	require.NotNil(t, status.Active)
	assert.Equal(t, 3, status.Active.ReviewCount)
	require.NotNil(t, status.LastBuild)
	assert.Equal(t, core.BuildOutcomeBuilt, status.LastBuild.Outcome)
}

func TestBuildRetries(t *testing.T) {
	var calls atomic.Int32
	env := setupCLI(t, func() ai.AIProvider {
		encoder := mock.NewMockEncoder()
		encoder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("connection reset")
			}
			vectors := make([][]float32, len(texts))
			for i, text := range texts {
				vectors[i] = mock.StemVector(text, mock.DefaultDim)
			}
			return vectors, nil
		}
		return mock.NewMockProviderWithServices(encoder, mock.NewMockSentimentScorer())
	})

	_, err := env.run("build", "--quiet", "--max-retries", "0")
	assert.ErrorIs(t, err, core.ErrModel)

	calls.Store(0)
	out, err := env.run("build", "--quiet", "--max-retries", "2", "--retry-delay", "1ms")
	require.NoError(t, err)
	assert.Contains(t, out, "Index built")
	assert.Equal(t, int32(2), calls.Load())
}

func TestCommandErrors(t *testing.T) {
	env := setupCLI(t, nil)

	t.Run("search requires a query", func(t *testing.T) {
		_, err := env.run("search")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query is required")
	})

	t.Run("unknown aggregation", func(t *testing.T) {
		_, err := env.run("search", "--aggregation", "median", "кофе")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "median")
	})

	t.Run("missing reviews file", func(t *testing.T) {
		_, err := env.run("build", "--reviews", filepath.Join(env.dir, "absent.csv"))
		assert.ErrorIs(t, err, core.ErrData)
	})

	t.Run("no reviews configured", func(t *testing.T) {
		cfgPath := filepath.Join(env.dir, "empty.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("store:\n  path: "+env.store+"\n"), 0644))

		app := newApp()
		app.Writer = &bytes.Buffer{}
		err := app.Run([]string{"venuefinder", "--config", cfgPath, "build"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reviews file is required")
	})

	t.Run("invalid config", func(t *testing.T) {
		cfgPath := filepath.Join(env.dir, "bad.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("search:\n  top_n: 0\n"), 0644))

		app := newApp()
		err := app.Run([]string{"venuefinder", "--config", cfgPath, "status"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "search.top_n")
	})

	t.Run("store flag overrides config", func(t *testing.T) {
		other := filepath.Join(env.dir, "other-store")
		out, err := env.run("--store", other, "status")
		require.NoError(t, err)
		assert.Contains(t, out, other)
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
			{"WaRn", slog.LevelWarn},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "log-level", Value: "info"},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						assert.True(t, slog.Default().Enabled(context.Background(), tc.expected))
						if tc.expected > slog.LevelDebug {
							assert.False(t, slog.Default().Enabled(context.Background(), tc.expected-1))
						}
						return nil
					},
				}

				require.NoError(t, app.Run([]string{"test", "--log-level", tc.input}))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestOpenEngineReleasesProvider(t *testing.T) {
	var provider *mock.MockProvider
	env := setupCLI(t, func() ai.AIProvider {
		provider = mock.NewMockProvider().(*mock.MockProvider)
		return provider
	})

	notADir := filepath.Join(env.dir, "store.txt")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0644))

	_, err := env.run("--store", notADir, "status")
	require.Error(t, err)
	require.NotNil(t, provider)
	assert.True(t, provider.Closed())
}

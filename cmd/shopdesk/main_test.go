package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agentpkg "github.com/hrygo/shopdesk/ai/agents"
	"github.com/hrygo/shopdesk/ai/agents/runner"
	"github.com/hrygo/shopdesk/ai/routing"
	"github.com/hrygo/shopdesk/internal/profile"
	"github.com/hrygo/shopdesk/store/seed"
)

func seedProfile(t *testing.T) *profile.Profile {
	t.Helper()
	p := &profile.Profile{Mode: "dev", Driver: profile.DriverJSON, Now: seed.ReferenceNow}
	p.FromEnv()
	require.NoError(t, p.Validate())
	return p
}

func TestReadUtterances(t *testing.T) {
	in := "Cancel order A1003\r\n\n   \nfirst dress under $100\n"
	got, err := readUtterances(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"Cancel order A1003", "first dress under $100"}, got)
}

func TestEngineHandlesSeedScenarios(t *testing.T) {
	eng, err := newEngine(context.Background(), seedProfile(t))
	require.NoError(t, err)

	reply, err := eng.dispatcher.Handle(context.Background(), "Cancel order A1003 — email mira@example.com.")
	require.NoError(t, err)
	assert.Equal(t, routing.IntentOrderHelp, reply.Intent)
	assert.Equal(t, "Success — order A1003 (mira@example.com) is canceled.", reply.Message)

	reply, err = eng.dispatcher.Handle(context.Background(), "Can you give me a discount code that doesn't exist?")
	require.NoError(t, err)
	assert.Equal(t, routing.IntentOther, reply.Intent)
	require.NotNil(t, reply.Trace.PolicyDecision)
	assert.True(t, reply.Trace.PolicyDecision.Refuse)
}

func TestEngineReadsVocabularyOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vocabulary.yaml"),
		[]byte("order_keywords: [refund]\n"), 0o600))

	p := seedProfile(t)
	p.ConfigDir = dir
	eng, err := newEngine(context.Background(), p)
	require.NoError(t, err)

	reply, err := eng.dispatcher.Handle(context.Background(), "I want a refund for A1003")
	require.NoError(t, err)
	assert.Equal(t, routing.IntentOrderHelp, reply.Intent)
}

func TestEngineRejectsBadRule(t *testing.T) {
	p := seedProfile(t)
	p.CancelRule = "elapsed +"
	_, err := newEngine(context.Background(), p)
	require.Error(t, err)
}

func TestPrintCorpusError(t *testing.T) {
	err := errors.Wrap(errors.New("corpus not imported yet (run `shopdesk import`)"), "failed to load products")

	var prod bytes.Buffer
	printCorpusError(&prod, err, &profile.Profile{Mode: "prod", Driver: profile.DriverSQLite})
	assert.Contains(t, prod.String(), "shopdesk import --driver=sqlite")
	assert.NotContains(t, prod.String(), "main_test.go", "prod output carries no stack")

	var dev bytes.Buffer
	printCorpusError(&dev, err, &profile.Profile{Mode: "dev", Driver: profile.DriverSQLite})
	assert.Contains(t, dev.String(), "shopdesk import --driver=sqlite")
	assert.Contains(t, dev.String(), "main_test.go", "dev output includes the error stack")
}

func TestWriteResults_FailureStaysInItsSlot(t *testing.T) {
	results := []runner.Result{
		{Index: 0, Input: "a", Reply: &agentpkg.Reply{Output: "first"}},
		{Index: 1, Input: "b", Err: errors.New("invalid created_at")},
		{Index: 2, Input: "c", Reply: &agentpkg.Reply{Output: "third"}},
	}

	var out bytes.Buffer
	writeResults(&out, results)
	assert.Equal(t, "first\n---\nerror: invalid created_at\n---\nthird\n", out.String())
}

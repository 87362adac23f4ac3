package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/feamerge/internal/fixture"
	"github.com/npillmayer/feamerge/merge"
	"github.com/npillmayer/feamerge/ufo"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
)

const lightFeatures = `@L = [A B];
# kerning
feature kern {
  pos \A \V -60;
} kern;
`

const boldFeatures = `@L = [A B];
feature kern {
  pos \A \V -40;
} kern;
`

// --- Test Suite Preparation ------------------------------------------------

type BackendTestEnviron struct {
	suite.Suite
	dir      string
	progress []float64
}

// listen for 'go test' command --> run test methods
func TestBackend(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "feamerge.backend")
	defer teardown()
	suite.Run(t, new(BackendTestEnviron))
}

// run before each test method
func (env *BackendTestEnviron) SetupTest() {
	env.dir = env.T().TempDir()
	env.progress = nil
	tracing.Select("feamerge.backend").SetTraceLevel(tracing.LevelInfo)
}

func (env *BackendTestEnviron) record(fraction float64, message string) {
	env.T().Logf("%3.0f%% %s", fraction*100, message)
	env.progress = append(env.progress, fraction)
}

// threeMasters creates a design space of three masters; the regular master
// is declared but missing on disk.
func (env *BackendTestEnviron) threeMasters(settings Settings) *Backend {
	fixture.WriteUFO(env.T(), env.dir, "Light.ufo", lightFeatures, false)
	fixture.WriteUFO(env.T(), env.dir, "Bold.ufo", boldFeatures, true)
	path := fixture.WriteDesignspace(env.T(), env.dir, "Test.designspace",
		[]fixture.Axis{fixture.Weight},
		[]fixture.Source{
			{Filename: "Light.ufo", Name: "Light", Location: []fixture.Dimension{{Name: "Weight", Value: 100}}},
			{Filename: "Regular.ufo", Name: "Regular", Location: []fixture.Dimension{{Name: "Weight", Value: 400}}},
			{Filename: "Bold.ufo", Name: "Bold", Location: []fixture.Dimension{{Name: "Weight", Value: 900}}},
		})
	b, err := FromPath(path, settings)
	env.Require().NoError(err)
	return b
}

// --- Tests -----------------------------------------------------------------

func (env *BackendTestEnviron) TestMergeSkipsMissingMaster() {
	b := env.threeMasters(DefaultSettings())
	r := b.MergeFeatures(context.Background(), "", env.record)
	env.Require().True(r.OK(), r.Message)
	env.Equal([]string{"Light", "Bold"}, r.Processed)
	env.Len(r.Diagnostics.Of(merge.MissingFile), 1)
	env.Equal("Regular", r.Diagnostics.Of(merge.MissingFile)[0].Source)
	env.Equal(filepath.Join(env.dir, DefaultOutputName), r.OutputPath)
	env.Require().NotNil(r.Stats)
	env.Equal(2, r.Stats.Masters)
	env.Equal(1, r.Stats.KernPairs)

	text := fixture.ReadFile(env.T(), r.OutputPath)
	env.Contains(text, `pos \A \V (wght=100:-60 wght=900:-40);`)
	env.Contains(text, `@L = [\A \B];`)
	env.NotContains(text, "feature mark", "mark block should be omitted")
	env.True(r.Diagnostics.Has(merge.EmptyFactSet))
	env.Equal(1.0, env.progress[len(env.progress)-1])
}

func (env *BackendTestEnviron) TestMergeOutputName() {
	b := env.threeMasters(DefaultSettings())
	r := b.MergeFeatures(context.Background(), "merged.fea", nil)
	env.Require().True(r.OK(), r.Message)
	env.Equal(filepath.Join(env.dir, "merged.fea"), r.OutputPath)
}

func (env *BackendTestEnviron) TestMergeWithoutMastersFails() {
	path := fixture.WriteDesignspace(env.T(), env.dir, "Empty.designspace",
		[]fixture.Axis{fixture.Weight},
		[]fixture.Source{{Filename: "Gone.ufo"}})
	b, err := FromPath(path, DefaultSettings())
	env.Require().NoError(err)
	r := b.MergeFeatures(context.Background(), "", nil)
	env.Equal(StatusError, r.Status)
	env.Contains(r.Message, "no masters")
	env.Len(r.Diagnostics.Of(merge.MissingFile), 1)
	_, err = os.Stat(filepath.Join(env.dir, DefaultOutputName))
	env.True(os.IsNotExist(err), "no output should be written")
}

func (env *BackendTestEnviron) TestCancelledMergeWritesNothing() {
	b := env.threeMasters(DefaultSettings())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := b.MergeFeatures(ctx, "", nil)
	env.Equal(StatusError, r.Status)
	env.Contains(r.Message, "cancelled")
	_, err := os.Stat(filepath.Join(env.dir, DefaultOutputName))
	env.True(os.IsNotExist(err))
}

func (env *BackendTestEnviron) TestBreakKerningGroups() {
	fixture.WriteUFO(env.T(), env.dir, "Light.ufo", "@L = [A B];\n# pairs\npos @L V -10;\n", true)
	path := fixture.WriteDesignspace(env.T(), env.dir, "Test.designspace",
		[]fixture.Axis{fixture.Weight}, []fixture.Source{{Filename: "Light.ufo"}})
	settings := DefaultSettings()
	settings.PreserveComments = false
	b, err := FromPath(path, settings)
	env.Require().NoError(err)

	r := b.BreakKerningGroups(context.Background(), env.record)
	env.Require().True(r.OK(), r.Message)
	env.Equal([]string{"Light.ufo"}, r.Processed)
	out := fixture.ReadFile(env.T(), filepath.Join(env.dir, "Light.ufo", "features", ufo.KerningExpandedFile))
	env.Equal("@L = [A B];\npos A V -10;\npos B V -10;\n", out)
}

func (env *BackendTestEnviron) TestBreakMarkGroups() {
	text := "@M = [acute grave];\npos mark @M [a e] <anchor 0 500> mark @top;\n"
	fixture.WriteUFO(env.T(), env.dir, "Light.ufo", text, false)
	path := fixture.WriteDesignspace(env.T(), env.dir, "Test.designspace",
		[]fixture.Axis{fixture.Weight}, []fixture.Source{{Filename: "Light.ufo"}})
	b, err := FromPath(path, DefaultSettings())
	env.Require().NoError(err)

	r := b.BreakMarkGroups(context.Background(), nil)
	env.Require().True(r.OK(), r.Message)
	out := fixture.ReadFile(env.T(), filepath.Join(env.dir, "Light.ufo", ufo.MarkExpandedFile))
	env.Contains(out, "pos mark acute a <anchor 0 500> mark @top;")
	env.Contains(out, "pos mark grave e <anchor 0 500> mark @top;")
}

func (env *BackendTestEnviron) TestBreakGroupsWithoutUsableMaster() {
	path := fixture.WriteDesignspace(env.T(), env.dir, "Test.designspace",
		[]fixture.Axis{fixture.Weight}, []fixture.Source{{Filename: "Gone.ufo"}})
	b, err := FromPath(path, DefaultSettings())
	env.Require().NoError(err)
	r := b.BreakKerningGroups(context.Background(), nil)
	env.Equal(StatusError, r.Status)
	env.True(r.Diagnostics.Has(merge.MissingFile))
}

func (env *BackendTestEnviron) TestProcessAll() {
	fixture.WriteUFO(env.T(), env.dir, "Light.ufo", "@L = [A B];\npos @L V -10;\n", false)
	fixture.WriteUFO(env.T(), env.dir, "Bold.ufo", "@L = [A B];\npos @L V -20;\n", false)
	path := fixture.WriteDesignspace(env.T(), env.dir, "Test.designspace",
		[]fixture.Axis{fixture.Weight},
		[]fixture.Source{
			{Filename: "Light.ufo", Location: []fixture.Dimension{{Name: "Weight", Value: 100}}},
			{Filename: "Bold.ufo", Location: []fixture.Dimension{{Name: "Weight", Value: 900}}},
		})
	settings := DefaultSettings()
	settings.ExpandGroups = true
	b, err := FromPath(path, settings)
	env.Require().NoError(err)

	r := b.ProcessAll(context.Background(), "", env.record)
	env.Require().True(r.OK(), r.Message)
	env.Require().Len(r.Steps, 3)
	env.Equal("kern", r.Steps[0].Operation)
	env.Equal("mark", r.Steps[1].Operation)
	env.Equal("merge", r.Steps[2].Operation)
	env.Equal(2, r.Stats.KernPairs)
	text := fixture.ReadFile(env.T(), r.OutputPath)
	env.Contains(text, `pos \A \V (wght=100:-10 wght=900:-20);`)
	env.Contains(text, `pos \B \V (wght=100:-10 wght=900:-20);`)
	env.FileExists(filepath.Join(env.dir, "Bold.ufo", ufo.KerningExpandedFile))
	env.FileExists(filepath.Join(env.dir, "Bold.ufo", ufo.MarkExpandedFile))
	for i := 1; i < len(env.progress); i++ {
		env.GreaterOrEqual(env.progress[i], env.progress[i-1], "progress must not go back")
	}
	env.Equal(1.0, env.progress[len(env.progress)-1])
}

func (env *BackendTestEnviron) TestProcessAllStopsAtFailingStep() {
	path := fixture.WriteDesignspace(env.T(), env.dir, "Test.designspace",
		[]fixture.Axis{fixture.Weight}, []fixture.Source{{Filename: "Gone.ufo"}})
	b, err := FromPath(path, DefaultSettings())
	env.Require().NoError(err)
	r := b.ProcessAll(context.Background(), "", nil)
	env.Equal(StatusError, r.Status)
	env.Len(r.Steps, 1)
	env.True(strings.HasPrefix(r.Message, "step kern failed"), r.Message)
}

func (env *BackendTestEnviron) TestFromPathMissing() {
	_, err := FromPath(filepath.Join(env.dir, "None.designspace"), DefaultSettings())
	env.Error(err)
}

func (env *BackendTestEnviron) TestSettingsFromEnv() {
	env.T().Setenv(EnvOutput, "out.fea")
	env.T().Setenv(EnvPreserveComments, "false")
	env.T().Setenv(EnvExpandGroups, "1")
	s := SettingsFromEnv()
	env.Equal("out.fea", s.OutputName)
	env.False(s.PreserveComments)
	env.True(s.ExpandGroups)

	env.T().Setenv(EnvPreserveComments, "maybe")
	env.True(SettingsFromEnv().PreserveComments, "unparsable values keep the default")
}

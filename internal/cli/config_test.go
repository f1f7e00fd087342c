package cli_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/slots/internal/cli"
	"github.com/calvinalkan/slots/pkg/slots"
)

func Test_LoadConfig_Returns_Defaults_When_No_Files_Exist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := cli.LoadConfig(cli.LoadConfigInput{WorkDirOverride: dir, Env: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Capacity)
	assert.Equal(t, cli.ModeStrict, cfg.Mode)
	assert.Nil(t, cfg.RuntimeChecks)
	assert.Equal(t, slots.ChecksDefault, cfg.Checks())
	assert.Empty(t, cfg.Sources.Global)
	assert.Empty(t, cfg.Sources.Project)
	assert.Equal(t, dir, cfg.EffectiveCwd)
}

func Test_LoadConfig_Applies_Precedence_When_All_Layers_Set(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	xdg := filepath.Join(c.Dir, "xdg")
	globalPath := c.WriteFile("xdg/slotsctl/config.json", `{"capacity": 2, "mode": "relaxed", "history_file": "hist"}`)
	projectPath := c.WriteFile(".slotsctl.json", `{
		// project wins over global
		"capacity": 3,
	}`)

	capacity := 5

	cfg, err := cli.LoadConfig(cli.LoadConfigInput{
		WorkDirOverride: c.Dir,
		Env:             map[string]string{"XDG_CONFIG_HOME": xdg},
		Capacity:        &capacity,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Capacity, "flag wins")
	assert.Equal(t, cli.ModeRelaxed, cfg.Mode, "global survives when nothing overrides it")
	assert.Equal(t, filepath.Join(c.Dir, "hist"), cfg.HistoryFile)
	assert.Equal(t, globalPath, cfg.Sources.Global)
	assert.Equal(t, projectPath, cfg.Sources.Project)
}

func Test_LoadConfig_Replaces_Project_File_When_Explicit_Path_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".slotsctl.json", `{"capacity": 3}`)
	custom := c.WriteFile("custom.json", `{"mode": "unrestricted"}`)

	cfg, err := cli.LoadConfig(cli.LoadConfigInput{WorkDirOverride: c.Dir, ConfigPath: "custom.json", Env: c.Env})
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Capacity)
	assert.Equal(t, cli.ModeUnrestricted, cfg.Mode)
	assert.Equal(t, custom, cfg.Sources.Project)
}

func Test_LoadConfig_Returns_Error_When_Explicit_File_Missing(t *testing.T) {
	t.Parallel()

	_, err := cli.LoadConfig(cli.LoadConfigInput{WorkDirOverride: t.TempDir(), ConfigPath: "nope.json"})
	require.ErrorIs(t, err, cli.ErrConfigFileNotFound)
}

func Test_LoadConfig_Returns_Error_When_Values_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "NegativeCapacity", content: `{"capacity": -1}`, want: cli.ErrCapacityInvalid},
		{name: "HugeCapacity", content: `{"capacity": 99999999}`, want: cli.ErrCapacityInvalid},
		{name: "UnknownMode", content: `{"mode": "loose"}`, want: cli.ErrModeInvalid},
		{name: "Garbage", content: `{capacity}`, want: cli.ErrConfigInvalid},
		{name: "WrongType", content: `{"capacity": "four"}`, want: cli.ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			c.WriteFile(".slotsctl.json", tt.content)

			_, err := cli.LoadConfig(cli.LoadConfigInput{WorkDirOverride: c.Dir, Env: c.Env})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err=%v, want %v", err, tt.want)
			}
		})
	}
}

func Test_Config_Checks_Maps_Setting_When_Explicit(t *testing.T) {
	t.Parallel()

	on, off := true, false

	assert.Equal(t, slots.ChecksOn, cli.Config{RuntimeChecks: &on}.Checks())
	assert.Equal(t, slots.ChecksOff, cli.Config{RuntimeChecks: &off}.Checks())
}

func Test_Print_Config_Shows_Sources_When_Project_File_Loaded(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	path := c.WriteFile(".slotsctl.json", `{"mode": "relaxed"}`)

	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, `"mode": "relaxed"`)
	cli.AssertContains(t, stdout, `"capacity": 8`)
	cli.AssertContains(t, stdout, "#   project: "+path)
	cli.AssertNotContains(t, stdout, "global:")
}

func Test_Print_Config_Shows_Defaults_When_No_Files(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "(using defaults only)")
}

func Test_Print_Config_Applies_Flags_When_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("-n", "3", "--mode=unrestricted", "--no-checks", "print-config")

	cli.AssertContains(t, stdout, `"capacity": 3`)
	cli.AssertContains(t, stdout, `"mode": "unrestricted"`)
	cli.AssertContains(t, stdout, `"runtime_checks": false`)
}

func Test_Print_Config_Fails_When_Config_Invalid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".slotsctl.json", `{invalid json}`)

	stderr := c.MustFail("print-config")
	cli.AssertContains(t, stderr, "invalid config file")
}

// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// setupTestConfig sets PATCHCTL_CFG_FILE to point to a test config file.
// Returns cleanup function that should be deferred.
func setupTestConfig(t *testing.T, testdataFile string) (cleanup func()) {
	t.Helper()

	// Get absolute path to testdata file
	configPath := filepath.Join("testdata", testdataFile)
	absPath, err := filepath.Abs(configPath)
	assert.NoError(t, err, "failed to get absolute path for test config")

	// Set PATCHCTL_CFG_FILE environment variable
	t.Setenv("PATCHCTL_CFG_FILE", absPath)

	// Reset the global Config to force reload
	Config = Type{}

	return func() {
		// Reset global Config
		Config = Type{}
	}
}

// withConfig is a helper that sets up a test config and executes a test function.
// This reduces boilerplate for common test patterns.
func withConfig(t *testing.T, testFile string, fn func(t *testing.T)) {
	t.Helper()
	cleanup := setupTestConfig(t, testFile)
	defer cleanup()
	_, _ = Load()
	fn(t)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		wantErr   bool
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "simple string values",
			testFile: "simple.yaml",
			wantErr:  false,
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Contains(t, cfg.Data, "editor")
				assert.Equal(t, "vim", cfg.Data["editor"])
				assert.Equal(t, "patches", cfg.Data["patches"])
			},
		},
		{
			name:     "nested structure",
			testFile: "nested.yaml",
			wantErr:  false,
			checkFunc: func(t *testing.T, cfg Type) {
				record, ok := cfg.Data["record"].(map[string]interface{})
				assert.True(t, ok, "record should be a map")
				assert.Equal(t, 5, record["context"])
				fetch, ok := cfg.Data["fetch"].(map[string]interface{})
				assert.True(t, ok, "fetch should be a map")
				cache, ok := fetch["cache"].(map[string]interface{})
				assert.True(t, ok, "fetch.cache should be a map")
				assert.Equal(t, 12, cache["hours"])
			},
		},
		{
			name:     "mixed scalar types",
			testFile: "mixed-types.yaml",
			wantErr:  false,
			checkFunc: func(t *testing.T, cfg Type) {
				assert.Equal(t, "patchctl", cfg.Data["name"])
				assert.Equal(t, 42, cfg.Data["count"])
				assert.Equal(t, true, cfg.Data["enabled"])
			},
		},
		{
			name:     "empty document",
			testFile: "empty.yaml",
			wantErr:  false,
			checkFunc: func(t *testing.T, cfg Type) {
				assert.Empty(t, cfg.Data)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestConfig(t, tt.testFile)
			defer cleanup()

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("PATCHCTL_CFG_FILE", "/nonexistent/path/patchctl.yaml")
	Config = Type{}
	defer func() { Config = Type{} }()

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_CfgFileIsDirectory(t *testing.T) {
	t.Setenv("PATCHCTL_CFG_FILE", "testdata")
	Config = Type{}
	defer func() { Config = Type{} }()

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestLoad_InvalidYAML(t *testing.T) {
	cleanup := setupTestConfig(t, "invalid.yaml")
	defer cleanup()

	_, err := Load()
	assert.Error(t, err)
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []string
		want         string
		wantErr      bool
	}{
		{
			name:     "top-level key",
			testFile: "simple.yaml",
			key:      "editor",
			want:     "vim",
		},
		{
			name:     "nested key",
			testFile: "nested.yaml",
			key:      "record.message",
			want:     "routine refresh",
		},
		{
			name:         "missing key with default",
			testFile:     "simple.yaml",
			key:          "missing",
			defaultValue: []string{"fallback"},
			want:         "fallback",
		},
		{
			name:     "missing key without default",
			testFile: "simple.yaml",
			key:      "missing",
			wantErr:  true,
		},
		{
			name:     "value is not a string",
			testFile: "mixed-types.yaml",
			key:      "count",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestConfig(t, tt.testFile)
			defer cleanup()
			_, _ = Load()

			got, err := GetString(tt.key, tt.defaultValue...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []int
		want         int
		wantErr      bool
	}{
		{
			name:     "plain int",
			testFile: "mixed-types.yaml",
			key:      "count",
			want:     42,
		},
		{
			name:     "float truncates to int",
			testFile: "mixed-types.yaml",
			key:      "ratio",
			want:     2,
		},
		{
			name:     "nested int",
			testFile: "nested.yaml",
			key:      "record.context",
			want:     5,
		},
		{
			name:         "missing key with default",
			testFile:     "simple.yaml",
			key:          "missing",
			defaultValue: []int{7},
			want:         7,
		},
		{
			name:     "missing key without default",
			testFile: "simple.yaml",
			key:      "missing",
			wantErr:  true,
		},
		{
			name:     "value is not an int",
			testFile: "simple.yaml",
			key:      "editor",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestConfig(t, tt.testFile)
			defer cleanup()
			_, _ = Load()

			got, err := GetInt(tt.key, tt.defaultValue...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetBool(t *testing.T) {
	withConfig(t, "mixed-types.yaml", func(t *testing.T) {
		got, err := GetBool("enabled")
		assert.NoError(t, err)
		assert.True(t, got)

		got, err = GetBool("missing", false)
		assert.NoError(t, err)
		assert.False(t, got)

		_, err = GetBool("name")
		assert.Error(t, err)
	})
}

func TestGetBool_Namespace(t *testing.T) {
	withConfig(t, "namespace.yaml", func(t *testing.T) {
		// Namespaced lookup wins over the bare key.
		Config.Namespace = "show"
		got, err := GetBool("color")
		assert.NoError(t, err)
		assert.True(t, got)

		// Without a namespace the bare key is used.
		Config.Namespace = ""
		got, err = GetBool("color")
		assert.NoError(t, err)
		assert.False(t, got)
	})
}

func TestConfig_Get_DeepNesting(t *testing.T) {
	withConfig(t, "deep-nested.yaml", func(t *testing.T) {
		got, err := GetString("a.b.c.d")
		assert.NoError(t, err)
		assert.Equal(t, "deepest", got)

		// Traversing through a scalar fails.
		_, err = GetString("a.b.c.d.e")
		assert.Error(t, err)
	})
}

func TestGetStringSlice_SimpleAndNested(t *testing.T) {
	withConfig(t, "string-slice.yaml", func(t *testing.T) {
		got, err := GetStringSlice("extensions")
		assert.NoError(t, err)
		assert.Equal(t, []string{".c", ".h"}, got)

		got, err = GetStringSlice("record.extensions")
		assert.NoError(t, err)
		assert.Equal(t, []string{".go"}, got)
	})
}

func TestGetStringSlice_NamespaceFallback(t *testing.T) {
	withConfig(t, "string-slice.yaml", func(t *testing.T) {
		// With the record namespace set, the namespaced slice is preferred.
		Config.Namespace = "record"
		got, err := GetStringSlice("extensions")
		assert.NoError(t, err)
		assert.Equal(t, []string{".go"}, got)
	})
}

func TestGetStringSlice_ErrorCases(t *testing.T) {
	withConfig(t, "string-slice.yaml", func(t *testing.T) {
		// Non-string elements.
		_, err := GetStringSlice("numbers")
		assert.Error(t, err)

		// Scalar value.
		_, err = GetStringSlice("scalar")
		assert.Error(t, err)

		// Missing with default.
		got, err := GetStringSlice("missing", []string{"x"})
		assert.NoError(t, err)
		assert.Equal(t, []string{"x"}, got)
	})
}

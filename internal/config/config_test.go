/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmpc/phaserun/internal/plan"
)

// TestLoadConfig tests configuration loading
// TestLoadConfig 测试配置加载
func TestLoadConfig(t *testing.T) {
	// Create a temporary config file / 创建临时配置文件
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
log:
  level: debug
  file: /tmp/phaserun.log
  max_size: 50
  max_backups: 5
  max_age: 14

plan:
  phases:
    - name: protocol
      specs:
        - workdir: /app/MPSU/build
          command: "./main -r 0"
        - workdir: /app/MPSU/build
          command: "./main -r 1"
    - name: query
      specs:
        - workdir: /app/APSI/build/bin
          args: ["./receiver_cli", "-q", "query.csv"]
          env:
            APSI_LOG_LEVEL: "info"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// Load config / 加载配置
	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify values / 验证值
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/phaserun.log", cfg.Log.File)
	assert.Equal(t, 50, cfg.Log.MaxSize)
	assert.Equal(t, 5, cfg.Log.MaxBackups)
	assert.Equal(t, 14, cfg.Log.MaxAge)

	require.Len(t, cfg.Plan.Phases, 2)
	assert.Equal(t, "protocol", cfg.Plan.Phases[0].Name)
	require.Len(t, cfg.Plan.Phases[0].Specs, 2)
	assert.Equal(t, "./main -r 1", cfg.Plan.Phases[0].Specs[1].Command)

	// Env names must keep their case through loading
	// 环境变量名在加载过程中必须保留大小写
	assert.Equal(t, "info", cfg.Plan.Phases[1].Specs[0].Env["APSI_LOG_LEVEL"])
}

// TestLoadConfigDefaults tests default configuration values
// TestLoadConfigDefaults 测试默认配置值
func TestLoadConfigDefaults(t *testing.T) {
	// Create a minimal config file / 创建最小配置文件
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
plan:
  phases:
    - specs:
        - command: "exit 0"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// Load config / 加载配置
	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify default values / 验证默认值
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFile, cfg.Log.File)
	assert.Equal(t, DefaultLogMaxSize, cfg.Log.MaxSize)
	assert.Equal(t, DefaultLogMaxBackups, cfg.Log.MaxBackups)
	assert.Equal(t, DefaultLogMaxAge, cfg.Log.MaxAge)
}

// TestLoadConfigMissingFile tests loading when the config file does not exist
// TestLoadConfigMissingFile 测试配置文件不存在时的加载
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Defaults apply, but the empty plan fails validation
	// 默认值生效，但空计划无法通过验证
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.ErrorIs(t, cfg.Validate(), plan.ErrNoPhases)
}

// TestValidateConfig tests configuration validation
// TestValidateConfig 测试配置验证
func TestValidateConfig(t *testing.T) {
	validPlan := plan.Plan{Phases: []plan.Phase{{
		Specs: []plan.LaunchSpec{{Command: "true"}},
	}}}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Log:  LogConfig{Level: "info"},
				Plan: validPlan,
			},
		},
		{
			name: "invalid log level",
			cfg: Config{
				Log:  LogConfig{Level: "verbose"},
				Plan: validPlan,
			},
			wantErr: true,
		},
		{
			name: "empty plan",
			cfg: Config{
				Log: LogConfig{Level: "info"},
			},
			wantErr: true,
		},
		{
			name: "invalid launch spec",
			cfg: Config{
				Log: LogConfig{Level: "warn"},
				Plan: plan.Plan{Phases: []plan.Phase{{
					Specs: []plan.LaunchSpec{{Workdir: "/tmp"}},
				}}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestConfigString tests the debug representation
// TestConfigString 测试调试表示
func TestConfigString(t *testing.T) {
	cfg := Config{
		Log: LogConfig{Level: "info", File: "/tmp/a.log"},
		Plan: plan.Plan{Phases: []plan.Phase{
			{Specs: []plan.LaunchSpec{{Command: "true"}}},
		}},
	}
	s := cfg.String()
	assert.Contains(t, s, "info")
	assert.Contains(t, s, "Plan.Phases: 1")
}

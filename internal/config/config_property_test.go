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
	"testing"

	"pgregory.net/rapid"

	"github.com/openmpc/phaserun/internal/plan"
)

// **Property: Config YAML Round-Trip**
//
// Property: For any valid orchestrator configuration, serializing to YAML
// and parsing back SHALL produce an equivalent configuration.
// 属性：对于任何有效的编排器配置，序列化为 YAML 并解析回来应该产生等效的配置。
func TestProperty_ConfigYAMLRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// Generate a valid configuration / 生成有效配置
		cfg := generateValidConfig(t)

		// Serialize to YAML / 序列化为 YAML
		yamlData, err := cfg.ToYAML()
		if err != nil {
			t.Fatalf("Failed to serialize config to YAML: %v", err)
		}

		// Parse back from YAML / 从 YAML 解析回来
		parsedCfg, err := LoadFromYAML(yamlData)
		if err != nil {
			t.Fatalf("Failed to parse config from YAML: %v\nYAML content:\n%s", err, string(yamlData))
		}

		// Verify equality / 验证相等性
		if !cfg.Equal(parsedCfg) {
			t.Fatalf("Round-trip failed: original and parsed configs are not equal\nOriginal: %+v\nParsed: %+v\nYAML:\n%s",
				cfg, parsedCfg, string(yamlData))
		}
	})
}

// generateValidConfig generates a valid Config for property testing
// generateValidConfig 为属性测试生成有效的 Config
func generateValidConfig(t *rapid.T) *Config {
	// Generate valid log levels / 生成有效的日志级别
	validLogLevels := []string{"debug", "info", "warn", "error"}
	logLevel := rapid.SampledFrom(validLogLevels).Draw(t, "logLevel")

	logFile := ""
	if rapid.Bool().Draw(t, "hasLogFile") {
		logFile = "/" + rapid.StringMatching(`[a-z][a-z0-9/]{0,15}[a-z0-9]`).Draw(t, "logFile") + ".log"
	}

	// Generate a small plan / 生成一个小计划
	numPhases := rapid.IntRange(1, 3).Draw(t, "numPhases")
	phases := make([]plan.Phase, numPhases)
	for i := 0; i < numPhases; i++ {
		numSpecs := rapid.IntRange(1, 3).Draw(t, "numSpecs")
		specs := make([]plan.LaunchSpec, numSpecs)
		for j := 0; j < numSpecs; j++ {
			specs[j] = plan.LaunchSpec{
				Workdir: "/" + rapid.StringMatching(`[a-z][a-z0-9/]{0,10}[a-z0-9]`).Draw(t, "workdir"),
				Command: rapid.StringMatching(`[a-z./][a-z0-9 ./-]{0,20}[a-z0-9]`).Draw(t, "command"),
			}
		}
		phases[i] = plan.Phase{
			Name:  rapid.StringMatching(`[a-z][a-z0-9-]{0,10}`).Draw(t, "phaseName"),
			Specs: specs,
		}
	}

	return &Config{
		Log: LogConfig{
			Level:      logLevel,
			File:       logFile,
			MaxSize:    rapid.IntRange(1, 500).Draw(t, "maxSize"),
			MaxBackups: rapid.IntRange(0, 20).Draw(t, "maxBackups"),
			MaxAge:     rapid.IntRange(0, 60).Draw(t, "maxAge"),
		},
		Plan: plan.Plan{Phases: phases},
	}
}

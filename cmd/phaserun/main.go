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

// Package main is the entry point for the PhaseRun orchestrator.
// main 包是 PhaseRun 编排器的入口点。
//
// PhaseRun launches groups of independently executable external programs
// in phases: all commands of a phase run concurrently, a synchronization
// barrier separates phases, and a single success line is printed when
// every phase has completed.
// PhaseRun 按阶段启动多组可独立执行的外部程序：同一阶段的所有命令并发
// 运行，阶段之间有同步屏障，所有阶段完成后打印一行成功消息。
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openmpc/phaserun/internal/config"
	"github.com/openmpc/phaserun/internal/logging"
	"github.com/openmpc/phaserun/internal/runner"
)

// Version information, set at build time
// 版本信息，在构建时设置
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// completionMessage is the single success line printed after a full run
// completionMessage 是完整运行后打印的唯一成功消息
const completionMessage = "All commands have been executed successfully."

// out is where the completion message goes; a variable for tests
// out 是成功消息的输出位置；定义为变量以便测试
var out io.Writer = os.Stdout

// configFile is the path to the configuration file
// configFile 是配置文件的路径
var configFile string

// rootCmd is the root command for the orchestrator CLI
// rootCmd 是编排器 CLI 的根命令
var rootCmd = &cobra.Command{
	Use:   "phaserun",
	Short: "PhaseRun - multi-phase external process orchestrator",
	Long: `PhaseRun launches groups of external programs in phases.
PhaseRun 按阶段启动多组外部程序。

All commands of a phase start concurrently; no command of the next
phase starts before every command of the current phase has terminated.
同一阶段的所有命令并发启动；当前阶段的所有命令结束之前，
下一阶段的任何命令都不会启动。

Individual command failures are recorded and logged but never halt the
run; PhaseRun itself exits non-zero only when orchestration fails.
单个命令的失败会被记录和打印日志，但不会中止运行；
只有编排本身失败时 PhaseRun 才以非零状态退出。`,
	RunE: runPlan,
}

// versionCmd shows version information
// versionCmd 显示版本信息
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information / 打印版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("PhaseRun\n")
		fmt.Printf("  Version:    %s\n", Version)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Go Version: %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

// validateCmd checks the configuration and plan without launching anything
// validateCmd 检查配置和计划，不启动任何程序
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and plan without running / 验证配置和计划而不运行",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		specs := 0
		for i := range cfg.Plan.Phases {
			specs += len(cfg.Plan.Phases[i].Specs)
		}
		fmt.Fprintf(out, "Plan OK: %d phase(s), %d launch spec(s)\n", len(cfg.Plan.Phases), specs)
		return nil
	},
}

func init() {
	// Add flags to root command
	// 向根命令添加标志
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: /etc/phaserun/config.yaml)")

	// Add subcommands
	// 添加子命令
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(validateCmd)
}

// loadConfig loads and validates the configuration
// loadConfig 加载并验证配置
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w / 加载配置失败：%w", err, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w / 无效配置：%w", err, err)
	}
	return cfg, nil
}

// runPlan is the main entry point: it executes every phase of the plan
// and prints the completion message on full orchestration success.
// runPlan 是主入口点：执行计划的每个阶段，并在编排完全成功后打印成功消息。
func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// SIGINT/SIGTERM cancel the run and kill the current phase's processes;
	// there is no other timeout or cancellation.
	// SIGINT/SIGTERM 取消运行并杀死当前阶段的进程；除此之外没有超时或取消机制。
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := runner.New(logger).Run(ctx, &cfg.Plan)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("run interrupted: %w / 运行被中断：%w", ctx.Err(), ctx.Err())
	}

	// Individual failures were recorded per spec; the run itself completed,
	// so the orchestrator still reports completion and exits 0.
	// 单个失败已按启动项记录；运行本身已完成，因此编排器仍报告完成并以 0 退出。
	if !result.Succeeded() {
		logger.Warn("run finished with failed commands",
			zap.Int("failed", len(result.Failures())),
			zap.Int("total", result.SpecCount()),
		)
	}

	fmt.Fprintln(out, completionMessage)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

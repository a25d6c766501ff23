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

// Package runner executes a plan phase by phase.
// runner 包按阶段执行计划。
//
// All launch specs of a phase are started without waiting, then the
// runner blocks until every started process has resolved before moving
// to the next phase. Failures never halt the run: a non-zero exit, a
// terminating signal, or a launch that could not happen at all are each
// recorded in the RunResult and the run continues. Only the inability
// to observe a started process's status aborts the run.
// 一个阶段的所有启动项先全部启动（不等待），然后 runner 阻塞直到每个已
// 启动的进程结束，才进入下一阶段。失败不会中止运行：非零退出、被信号
// 终止、或完全无法启动，都只记录在 RunResult 中，运行继续。只有无法
// 观察已启动进程的状态才会中止运行。
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openmpc/phaserun/internal/plan"
)

// Runner executes plans. The zero value is not usable; use New.
// Runner 执行计划。零值不可用；请使用 New。
type Runner struct {
	logger *zap.Logger

	// Launched processes inherit these streams
	// 被启动的进程继承这些流
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Option configures a Runner
// Option 配置 Runner
type Option func(*Runner)

// WithStdio overrides the standard streams inherited by launched processes.
// WithStdio 覆盖被启动进程继承的标准流。
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdin = stdin
		r.stdout = stdout
		r.stderr = stderr
	}
}

// New creates a Runner. A nil logger disables logging.
// New 创建 Runner。logger 为 nil 时禁用日志。
func New(logger *zap.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		logger: logger,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// handle pairs a started process with its launch spec for the wait loop
// handle 将已启动的进程与其启动项配对，供等待循环使用
type handle struct {
	index   int
	spec    *plan.LaunchSpec
	cmd     *exec.Cmd
	started time.Time
}

// Run executes every phase of the plan in order and returns the
// aggregated result. The returned error is non-nil only when the
// orchestration itself failed; launched-process failures are reported
// through the RunResult.
// Run 按顺序执行计划的每个阶段并返回聚合结果。只有编排本身失败时
// 返回的 error 才非 nil；被启动进程的失败通过 RunResult 报告。
//
// There is no built-in timeout: a hung process blocks the run until
// the caller cancels ctx.
// 没有内置超时：挂起的进程会阻塞运行，直到调用方取消 ctx。
func (r *Runner) Run(ctx context.Context, p *plan.Plan) (*RunResult, error) {
	if p == nil {
		return nil, errors.New("plan is nil")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	result := &RunResult{Phases: make([]PhaseResult, 0, len(p.Phases))}

	for i := range p.Phases {
		phase := &p.Phases[i]
		label := phase.Label(i)

		r.logger.Info("phase starting",
			zap.String("phase", label),
			zap.Int("ordinal", i),
			zap.Int("specs", len(phase.Specs)),
		)

		phaseResult, err := r.runPhase(ctx, i, label, phase)
		if err != nil {
			return nil, fmt.Errorf("phase %d (%s): %w", i, label, err)
		}
		result.Phases = append(result.Phases, phaseResult)

		r.logger.Info("phase complete",
			zap.String("phase", label),
			zap.Int("ordinal", i),
		)
	}

	return result, nil
}

// runPhase starts every spec of the phase, then waits for each started
// process in handle order.
// runPhase 启动阶段的每个启动项，然后按句柄顺序等待每个已启动的进程。
func (r *Runner) runPhase(ctx context.Context, ordinal int, label string, phase *plan.Phase) (PhaseResult, error) {
	results := make([]SpecResult, len(phase.Specs))
	handles := make([]handle, 0, len(phase.Specs))

	// Start all specs without waiting / 启动所有启动项，不等待
	for j := range phase.Specs {
		spec := &phase.Specs[j]
		cmd := r.buildCommand(ctx, spec)
		started := time.Now()

		if err := cmd.Start(); err != nil {
			// Launch failure: resolved immediately, run continues
			// 启动失败：立即视为结束，运行继续
			results[j] = SpecResult{
				Workdir: spec.Workdir,
				Command: spec.CommandLine(),
				State:   StateLaunchFailed,
				Err:     err.Error(),
			}
			r.logger.Warn("failed to launch process",
				zap.String("phase", label),
				zap.String("workdir", spec.Workdir),
				zap.String("command", spec.CommandLine()),
				zap.Error(err),
			)
			continue
		}

		r.logger.Debug("process started",
			zap.String("phase", label),
			zap.String("command", spec.CommandLine()),
			zap.Int("pid", cmd.Process.Pid),
		)

		handles = append(handles, handle{index: j, spec: spec, cmd: cmd, started: started})
	}

	// Wait for every started process; completion order does not matter,
	// waiting in handle order still observes all of them.
	// 等待每个已启动的进程；完成顺序无关紧要，按句柄顺序等待仍能观察到全部。
	for _, h := range handles {
		waitErr := h.cmd.Wait()
		duration := time.Since(h.started)

		res, err := resolve(h, waitErr, duration)
		if err != nil {
			// Could not observe the handle's status: fatal for the run
			// 无法观察句柄状态：对本次运行是致命的
			return PhaseResult{}, fmt.Errorf("failed to wait for %q: %w", h.spec.CommandLine(), err)
		}
		results[h.index] = res

		r.logResolution(label, &res)
	}

	return PhaseResult{Ordinal: ordinal, Name: phase.Name, Specs: results}, nil
}

// resolve classifies a Wait outcome into a SpecResult.
// resolve 将 Wait 的结果归类为 SpecResult。
func resolve(h handle, waitErr error, duration time.Duration) (SpecResult, error) {
	res := SpecResult{
		Workdir:  h.spec.Workdir,
		Command:  h.spec.CommandLine(),
		PID:      h.cmd.Process.Pid,
		Duration: duration,
	}

	if waitErr == nil {
		res.State = StateExited
		res.ExitCode = 0
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if sig := terminationSignal(exitErr.ProcessState); sig != "" {
			res.State = StateSignaled
			res.Signal = sig
			res.ExitCode = exitErr.ProcessState.ExitCode()
			return res, nil
		}
		res.State = StateExited
		res.ExitCode = exitErr.ProcessState.ExitCode()
		return res, nil
	}

	// Not an exit status at all / 根本不是退出状态
	return SpecResult{}, waitErr
}

// logResolution logs one resolved launch spec (spec failures are
// recorded but never halt the run).
// logResolution 记录一个已结束的启动项（失败只记录，不会中止运行）。
func (r *Runner) logResolution(label string, res *SpecResult) {
	fields := []zap.Field{
		zap.String("phase", label),
		zap.String("command", res.Command),
		zap.Int("pid", res.PID),
		zap.String("state", string(res.State)),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", res.Duration),
	}
	if res.Signal != "" {
		fields = append(fields, zap.String("signal", res.Signal))
	}

	if res.Succeeded() {
		r.logger.Info("process resolved", fields...)
	} else {
		r.logger.Warn("process resolved with failure", fields...)
	}
}

// buildCommand translates a launch spec into an exec.Cmd rooted at the
// spec's working directory, inheriting the runner's standard streams
// and environment.
// buildCommand 将启动项转换为以其工作目录为根的 exec.Cmd，
// 继承 runner 的标准流和环境变量。
func (r *Runner) buildCommand(ctx context.Context, spec *plan.LaunchSpec) *exec.Cmd {
	var cmd *exec.Cmd
	if spec.Command != "" {
		cmd = shellCommand(ctx, spec.Command)
	} else {
		program := spec.Args[0]
		// exec resolves relative program paths against the orchestrator's
		// own working directory, not cmd.Dir; anchor dir-relative programs
		// (e.g. "./main") to the spec's workdir.
		// exec 以编排器自身的工作目录而非 cmd.Dir 解析相对程序路径；
		// 将目录相对程序（如 "./main"）锚定到启动项的工作目录。
		if spec.Workdir != "" && !filepath.IsAbs(program) && strings.ContainsAny(program, `/\`) {
			program = filepath.Join(spec.Workdir, program)
		}
		cmd = exec.CommandContext(ctx, program, spec.Args[1:]...)
	}

	cmd.Dir = spec.Workdir
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	// Inherit the orchestrator's environment, then append spec extras
	// 继承编排器的环境变量，再追加启动项的额外变量
	cmd.Env = os.Environ()
	for k, v := range spec.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	return cmd
}

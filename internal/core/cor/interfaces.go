// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cor (Chain of Responsibility) is the small workflow framework the
// recap pipeline is built on. A workflow is a Chain of Commands that share a
// Context. Each command reads its input from the context, does one unit of
// work and writes its output back; the chain pipes one command's output into
// the next command's input and stops on the first recorded error unless told
// otherwise.
//
// Interfaces:
//   - Context: The shared property bag, error collector and Go context carrier.
//   - Executable: Anything that can run against a Context.
//   - Command: An Executable with a name, input/output keys and telemetry.
//   - Chain: A Command that runs an ordered list of Commands.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// CtxIn is the default input key. BaseChain fills it with the previous
	// command's CtxOut value before running the next command.
	CtxIn = "__IN__"
	// CtxOut is the default output key a command writes its primary result to.
	CtxOut = "__OUT__"
)

// Context is the state shared by every command of one workflow execution.
type Context interface {
	// SetContext replaces the Go context used for cancellation and tracing.
	SetContext(context context.Context)

	// GetContext returns the current Go context.
	GetContext() context.Context

	// Add stores a value under key and returns the Context for chaining.
	Add(key string, value interface{}) Context

	// AddError records an error, keyed by the name of the command that produced it.
	AddError(key string, err error)

	// GetErrors returns every recorded error keyed by command name.
	GetErrors() map[string]error

	// Err joins every recorded error into one, or returns nil.
	Err() error

	// Get returns the value stored under key, or nil.
	Get(key string) interface{}

	// Remove deletes key.
	Remove(key string)

	// HasErrors reports whether any error was recorded.
	HasErrors() bool

	// Fork returns a child context that starts with a copy of this context's
	// data and the same Go context but collects its own errors. A failed
	// step can run in a fork so the parent workflow decides how to recover.
	Fork() Context
}

// Executable is anything that runs against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is one named step of a workflow.
type Command interface {
	Executable

	// GetName returns the unique name used for spans, counters and error keys.
	GetName() string

	// GetInputParam returns the context key the command reads its input from.
	GetInputParam() string

	// GetOutputParam returns the context key the command writes its output to.
	GetOutputParam() string

	// IsExecutable is the precondition checked by the chain before Execute.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is a Command made of other Commands.
type Chain interface {
	Command

	// ContinueOnFailure makes the chain run the remaining commands after an error.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution order.
	AddCommand(command Command) Chain

	// Len returns the number of commands in the chain.
	Len() int
}

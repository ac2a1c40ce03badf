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

package cor

// ForkedChain runs its commands on a Fork of the context it is given, so
// errors raised inside it never reach the parent. On success the values
// under the kept keys are copied to the parent; on failure the joined error
// is stored in the parent under the error key as a plain value. Either way
// the parent's input passes through unchanged to the next command.
type ForkedChain struct {
	BaseChain
	errorParam string
	keep       []string
}

// NewForkedChain creates a ForkedChain that reports failures under errorParam
// and copies the keep keys back on success.
func NewForkedChain(name string, errorParam string, keep ...string) *ForkedChain {
	return &ForkedChain{BaseChain: *NewBaseChain(name), errorParam: errorParam, keep: keep}
}

func (c *ForkedChain) Execute(chCtx Context) {
	fork := chCtx.Fork()
	c.BaseChain.Execute(fork)

	if err := fork.Err(); err != nil {
		chCtx.Add(c.errorParam, err)
	} else {
		for _, key := range c.keep {
			if v := fork.Get(key); v != nil {
				chCtx.Add(key, v)
			}
		}
	}
	chCtx.Add(CtxOut, chCtx.Get(CtxIn))
}

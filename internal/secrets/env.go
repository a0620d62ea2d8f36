// Copyright 2025 6flow Studio
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package secrets resolves logical secret names to values through the
// workflow's declared name-to-environment-variable mapping and a live
// environment lookup. Secrets are never passed by value in a preview
// request; this is the only place the core touches a literal secret.
package secrets

import (
	"os"

	"github.com/6flow-studio/6flow-convergence-sub000/pkg/errors"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

// Resolver resolves declared secrets against an environment.
type Resolver struct {
	// lookup is os.LookupEnv in production; tests inject a fake.
	lookup func(string) (string, bool)
}

// NewResolver creates a resolver backed by the process environment.
func NewResolver() *Resolver {
	return &Resolver{lookup: os.LookupEnv}
}

// NewResolverWithLookup creates a resolver with a custom environment
// lookup, for tests.
func NewResolverWithLookup(lookup func(string) (string, bool)) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve returns the value for a logical secret name. Failure modes are
// typed and loud: an undeclared name is secret_not_declared; a declared
// name whose environment variable is unset is
// secret_environment_unavailable. Error messages name the logical secret
// and the variable, never any value.
func (r *Resolver) Resolve(cfg workflow.GlobalConfig, name string) (string, error) {
	if name == "" {
		return "", errors.New(errors.CodeSecretNotDeclared, "empty secret name")
	}

	envVar, ok := cfg.SecretEnvVariable(name)
	if !ok {
		return "", errors.Newf(errors.CodeSecretNotDeclared,
			"secret %q is not declared in the workflow's global configuration", name)
	}

	value, ok := r.lookup(envVar)
	if !ok || value == "" {
		return "", errors.Newf(errors.CodeSecretEnvironmentUnavailable,
			"environment variable %q for secret %q is not set", envVar, name)
	}
	return value, nil
}

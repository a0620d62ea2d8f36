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

package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/6flow-studio/6flow-convergence-sub000/pkg/errors"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

func declaredConfig() workflow.GlobalConfig {
	return workflow.GlobalConfig{
		Secrets: []workflow.SecretReference{
			{Name: "apiToken", EnvVariable: "PREVIEW_API_TOKEN"},
		},
	}
}

func TestResolveDeclaredSecret(t *testing.T) {
	r := NewResolverWithLookup(func(key string) (string, bool) {
		if key == "PREVIEW_API_TOKEN" {
			return "sk-value", true
		}
		return "", false
	})

	value, err := r.Resolve(declaredConfig(), "apiToken")
	require.NoError(t, err)
	assert.Equal(t, "sk-value", value)
}

func TestResolveUndeclaredSecret(t *testing.T) {
	r := NewResolverWithLookup(func(string) (string, bool) { return "", false })

	_, err := r.Resolve(declaredConfig(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeSecretNotDeclared))
	assert.Contains(t, err.Error(), `"ghost"`)
}

func TestResolveUnsetEnvironment(t *testing.T) {
	r := NewResolverWithLookup(func(string) (string, bool) { return "", false })

	_, err := r.Resolve(declaredConfig(), "apiToken")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeSecretEnvironmentUnavailable))
	// The message names the mapping, never a value.
	assert.Contains(t, err.Error(), "PREVIEW_API_TOKEN")
}

func TestResolveEmptyName(t *testing.T) {
	r := NewResolver()
	_, err := r.Resolve(declaredConfig(), "")
	assert.True(t, errors.IsCode(err, errors.CodeSecretNotDeclared))
}

func TestResolveFromProcessEnv(t *testing.T) {
	t.Setenv("PREVIEW_API_TOKEN", "from-env")

	value, err := NewResolver().Resolve(declaredConfig(), "apiToken")
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)
}

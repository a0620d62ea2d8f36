package workflow

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "id": "wf-1",
  "name": "price alert",
  "version": "1.0",
  "nodes": [
    {
      "id": "http-1",
      "type": "httpRequest",
      "position": {"x": 100, "y": 200},
      "data": {
        "label": "Fetch price",
        "config": {
          "method": "GET",
          "url": "https://api.example.com/price?symbol={{config.isTestnet}}",
          "expectedStatusCodes": [200, 201],
          "responseFormat": "json"
        }
      }
    },
    {
      "id": "read-1",
      "type": "evmRead",
      "position": {"x": 300, "y": 200},
      "data": {
        "label": "Read balance",
        "config": {
          "chainSelectorName": "ethereum-testnet-sepolia",
          "contractAddress": "0x1111111111111111111111111111111111111111",
          "functionName": "balanceOf",
          "abi": {
            "type": "function",
            "name": "balanceOf",
            "stateMutability": "view",
            "inputs": [{"name": "owner", "type": "address"}],
            "outputs": [{"name": "", "type": "uint256"}]
          },
          "args": [{"type": "static", "value": "{{http-1.body.owner}}", "abiType": "address"}]
        }
      }
    }
  ],
  "edges": [
    {"id": "e1", "source": "http-1", "target": "read-1"}
  ],
  "globalConfig": {
    "isTestnet": true,
    "secrets": [{"name": "apiToken", "envVariable": "API_TOKEN"}],
    "rpcs": [{"chainName": "ethereum-testnet-sepolia", "url": "https://rpc.example"}]
  }
}`

func TestParseSampleDocument(t *testing.T) {
	w, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	require.Len(t, w.Nodes, 2)
	assert.Equal(t, KindHTTPRequest, w.Nodes[0].Kind)
	assert.Equal(t, "Fetch price", w.Nodes[0].Data.Label)

	cfg, ok := w.Nodes[0].Data.Config.(*HTTPRequestConfig)
	require.True(t, ok)
	assert.Equal(t, "GET", cfg.Method)
	assert.Equal(t, []int{200, 201}, cfg.ExpectedStatusCodes)

	read, ok := w.Nodes[1].Data.Config.(*EVMReadConfig)
	require.True(t, ok)
	assert.Equal(t, "balanceOf", read.FunctionName)
	require.Len(t, read.ABI.Inputs, 1)
	assert.Equal(t, "address", read.ABI.Inputs[0].Type)
}

func TestParseUnknownKind(t *testing.T) {
	doc := `{"id":"w","name":"n","version":"1","nodes":[{"id":"x","type":"teleport","data":{"label":"","config":{}}}],"edges":[],"globalConfig":{}}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown node kind "teleport"`)
}

func TestParseDuplicateNodeID(t *testing.T) {
	doc := `{"id":"w","name":"n","version":"1","nodes":[
		{"id":"a","type":"log","data":{"label":"","config":{}}},
		{"id":"a","type":"log","data":{"label":"","config":{}}}
	],"edges":[],"globalConfig":{}}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate node id "a"`)
}

func TestNodeMarshalRoundTrip(t *testing.T) {
	w, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	data, err := json.Marshal(w)
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, w.Nodes[0].Data.Config, again.Nodes[0].Data.Config)
	assert.Equal(t, w.GlobalConfig, again.GlobalConfig)
}

func TestNewConfigCoversAllKinds(t *testing.T) {
	for _, k := range AllKinds {
		assert.NotNilf(t, newConfig(k), "kind %s has no config record", k)
	}
	assert.Nil(t, newConfig(Kind("bogus")))
}

func TestSecretReferenceValidate(t *testing.T) {
	tests := []struct {
		name    string
		ref     SecretReference
		wantErr bool
	}{
		{"valid", SecretReference{Name: "apiToken", EnvVariable: "API_TOKEN"}, false},
		{"empty name", SecretReference{EnvVariable: "API_TOKEN"}, true},
		{"empty env", SecretReference{Name: "apiToken"}, true},
		{"same", SecretReference{Name: "TOKEN", EnvVariable: "TOKEN"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ref.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGlobalConfigLookups(t *testing.T) {
	g := GlobalConfig{
		Secrets: []SecretReference{{Name: "apiToken", EnvVariable: "API_TOKEN"}},
		RPCs:    []RPCEntry{{ChainName: "polygon-mainnet", URL: "https://poly.example"}},
	}

	url, ok := g.RPCOverride("polygon-mainnet")
	assert.True(t, ok)
	assert.Equal(t, "https://poly.example", url)

	_, ok = g.RPCOverride("ethereum-mainnet")
	assert.False(t, ok)

	env, ok := g.SecretEnvVariable("apiToken")
	assert.True(t, ok)
	assert.Equal(t, "API_TOKEN", env)

	_, ok = g.SecretEnvVariable("missing")
	assert.False(t, ok)
}

func TestLoadFileYAML(t *testing.T) {
	yamlDoc := `
id: wf-yaml
name: yaml workflow
version: "1.0"
nodes:
  - id: secret-1
    type: getSecret
    position: {x: 0, y: 0}
    data:
      label: Fetch token
      config:
        secretName: apiToken
edges: []
globalConfig:
  isTestnet: true
  secrets:
    - name: apiToken
      envVariable: API_TOKEN
  rpcs: []
`
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	w, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, w.Nodes, 1)
	assert.Equal(t, KindGetSecret, w.Nodes[0].Kind)

	cfg, ok := w.Nodes[0].Data.Config.(*GetSecretConfig)
	require.True(t, ok)
	assert.Equal(t, "apiToken", cfg.SecretName)
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, KindCronTrigger.IsTrigger())
	assert.False(t, KindHTTPRequest.IsTrigger())
	assert.True(t, KindMerge.IsPassthrough())
	assert.True(t, KindIf.IsPassthrough())
	assert.True(t, KindFilter.IsPassthrough())
	assert.False(t, KindLog.IsPassthrough())
}

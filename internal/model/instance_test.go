package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceValidate(t *testing.T) {
	tests := []struct {
		name    string
		inst    Instance
		wantErr bool
	}{
		{
			name: "valid http instance",
			inst: Instance{ID: "a", TemplateName: "demo", Transport: HTTPTransport{Endpoint: "http://h1:8080"}},
		},
		{
			name: "valid stdio instance",
			inst: Instance{ID: "a", TemplateName: "demo", Transport: StdioTransport{Command: []string{"echo", "hi"}}},
		},
		{
			name:    "missing id",
			inst:    Instance{TemplateName: "demo", Transport: HTTPTransport{Endpoint: "http://h1"}},
			wantErr: true,
		},
		{
			name:    "http transport without endpoint",
			inst:    Instance{ID: "a", TemplateName: "demo", Transport: HTTPTransport{}},
			wantErr: true,
		},
		{
			name:    "http endpoint not absolute",
			inst:    Instance{ID: "a", TemplateName: "demo", Transport: HTTPTransport{Endpoint: "/relative"}},
			wantErr: true,
		},
		{
			name:    "stdio transport without command",
			inst:    Instance{ID: "a", TemplateName: "demo", Transport: StdioTransport{}},
			wantErr: true,
		},
		{
			name:    "negative consecutive failures",
			inst:    Instance{ID: "a", TemplateName: "demo", Transport: HTTPTransport{Endpoint: "http://h1"}, ConsecutiveFailures: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.inst.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInstance)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInstanceWeightDefaultsToOne(t *testing.T) {
	inst := Instance{}
	assert.Equal(t, 1, inst.Weight())

	inst.Metadata = map[string]interface{}{"weight": 3}
	assert.Equal(t, 3, inst.Weight())

	inst.Metadata["weight"] = float64(5)
	assert.Equal(t, 5, inst.Weight())

	inst.Metadata["weight"] = -2
	assert.Equal(t, 1, inst.Weight(), "non-positive weight falls back to 1")
}

func TestInstanceCloneIsIndependent(t *testing.T) {
	now := time.Now()
	orig := &Instance{
		ID:           "a",
		TemplateName: "demo",
		Transport:    StdioTransport{Command: []string{"run"}, Env: map[string]string{"K": "V"}},
		Tags:         []string{"x"},
		Metadata:     map[string]interface{}{"weight": 2},
		LastHealthCheck: &now,
	}

	clone := orig.Clone()
	clone.Tags[0] = "mutated"
	clone.Metadata["weight"] = 99
	clone.Transport.(StdioTransport).Env["K"] = "ignored-because-map-copy-by-value-receiver"
	*clone.LastHealthCheck = now.Add(time.Hour)

	assert.Equal(t, "x", orig.Tags[0])
	assert.Equal(t, 2, orig.Metadata["weight"])
	assert.Equal(t, now, *orig.LastHealthCheck)
}

func TestInstanceJSONRoundTrip(t *testing.T) {
	lhc := time.Now().UTC().Truncate(time.Second)
	orig := Instance{
		ID:                  "a",
		TemplateName:        "demo",
		Transport:           StdioTransport{Command: []string{"run", "--flag"}, WorkingDir: "/tmp", Env: map[string]string{"K": "V"}},
		Backend:             BackendLocal,
		Status:              StatusHealthy,
		ConsecutiveFailures: 0,
		LastHealthCheck:     &lhc,
		IsActive:            true,
		Metadata:            map[string]interface{}{"weight": float64(2)},
		CreatedAt:           lhc,
		UpdatedAt:           lhc,
	}

	data, err := json.Marshal(orig)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"transport":"stdio"`)
	assert.Contains(t, string(data), `"command":["run","--flag"]`)

	var decoded Instance
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, orig.ID, decoded.ID)
	assert.Equal(t, orig.Transport, decoded.Transport)
	assert.Equal(t, orig.Status, decoded.Status)
	assert.Equal(t, orig.LastHealthCheck.Unix(), decoded.LastHealthCheck.Unix())
}

func TestInstanceJSONDefaultsOnMissingFields(t *testing.T) {
	data := []byte(`{"id":"a","template_name":"demo","transport":"http","endpoint":"http://h1"}`)
	var decoded Instance
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, StatusUnknown, decoded.Status)
	assert.Equal(t, BackendLocal, decoded.Backend)
	assert.Equal(t, HTTPTransport{Endpoint: "http://h1"}, decoded.Transport)
}

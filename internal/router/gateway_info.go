package router

import "encoding/json"

// gatewayInfo is stamped onto a result that came from a stdio fallback
// dispatch so a caller can tell the response did not come from a
// registered, load-balanced instance.
type gatewayInfo struct {
	Backend           string `json:"backend"`
	Note              string `json:"note"`
	UsedStdioFallback bool   `json:"used_stdio_fallback"`
}

// augmentWithGatewayInfo adds a "_gateway_info" field to a JSON object
// result. If result does not decode as an object, it is wrapped under a
// "result" key instead so the augmentation never fails silently.
func augmentWithGatewayInfo(result []byte, backend string) ([]byte, error) {
	info := gatewayInfo{
		Backend:           backend,
		Note:              "served via ephemeral stdio fallback; no registered instance was available",
		UsedStdioFallback: true,
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(result, &obj); err != nil || obj == nil {
		obj = map[string]interface{}{"result": json.RawMessage(result)}
	}
	obj["_gateway_info"] = info

	return json.Marshal(obj)
}

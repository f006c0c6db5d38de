package domain

// EngineStats is the aggregate snapshot served by GET /v1/metrics/engine.
// Values are cumulative since process start.
type EngineStats struct {
	TotalTurns      int64            `json:"totalTurns"`
	TurnsByIntent   map[string]int64 `json:"turnsByIntent"`
	SessionsStarted int64            `json:"sessionsStarted"`
	Reengagements   int64            `json:"reengagements"`
	RelayDelivered  int64            `json:"relayDelivered"`
	RelayFailed     int64            `json:"relayFailed"`
	StoreErrors     int64            `json:"storeErrors"`
	CacheHitRate    float64          `json:"cacheHitRate"`
	Period          string           `json:"period"`
}

package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "req_id"
	VehicleIDKey ctxKey = "vehicle_id"
)

// WithRequestID tags ctx so that timings logged under it can be correlated.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// WithVehicleID tags ctx with the vehicle on whose behalf work is done.
func WithVehicleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, VehicleIDKey, id)
}

// Time logs the duration of the named operation when the returned func runs.
// Usage: defer obs.Time(ctx, "op")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)
	vehicleID, _ := ctx.Value(VehicleIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("req_id=%s vehicle=%s op=%s dur=%dms err=%v", reqID, vehicleID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("req_id=%s vehicle=%s op=%s dur=%dms", reqID, vehicleID, name, dur.Milliseconds())
	}
}

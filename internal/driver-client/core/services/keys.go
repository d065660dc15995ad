package services

// Persisted storage keys. Each key has exactly one writing service:
// session owns the auth keys, the availability controller owns
// driverAvailable, the tracker owns isTracking, the position cache owns
// driver_last_position, notifications owns pushToken.
const (
	keyToken        = "userToken"
	keyDriverID     = "driverId"
	keyDriverData   = "driverData"
	keyLoginTime    = "loginTime"
	keyAvailable    = "driverAvailable"
	keyTracking     = "isTracking"
	keyLastPosition = "driver_last_position"
	keyPushToken    = "pushToken"
)

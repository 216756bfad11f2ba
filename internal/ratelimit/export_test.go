package ratelimit

// BurstFor exports burstFor for testing.
var BurstFor = burstFor

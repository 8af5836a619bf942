package util

import "time"

func NowMillis() int64 {
	return time.Now().UnixMilli()
}

func FromMillis(m int64) time.Time {
	return time.UnixMilli(m)
}

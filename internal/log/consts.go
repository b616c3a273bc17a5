package log

import "go.uber.org/zap"

var (
	SourceHTTP     = zap.String("source", "http")
	SourceMinio    = zap.String("source", "minio")
	SourcePG       = zap.String("source", "postgres")
	SourceRedis    = zap.String("source", "redis")
	SourceUpload   = zap.String("source", "upload")
	SourceFeed     = zap.String("source", "feed")
	SourceComments = zap.String("source", "comments")
	SourceExif     = zap.String("source", "exif")
)

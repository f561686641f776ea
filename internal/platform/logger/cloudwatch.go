package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs"
	"github.com/sirupsen/logrus"
)

const (
	// CloudWatch rejects batches over 1 MB.  Each event carries 26 bytes
	// of overhead on top of the message payload.
	maxBatchBytes     = 1048576
	perEventOverhead  = 26
	maxEventsPerBatch = 10000
)

// cloudwatchBatchingHook accumulates formatted log entries and ships them to
// CloudWatch Logs in batches, flushing on an interval or when the pending
// batch would exceed the byte limit.
type cloudwatchBatchingHook struct {
	client       *cloudwatchlogs.CloudWatchLogs
	group        string
	stream       string
	nextToken    *string
	mutex        sync.Mutex
	pending      []*cloudwatchlogs.InputLogEvent
	pendingBytes int
}

func newCloudwatchBatchingHook(group string, stream string, awsconf *aws.Config, flushInterval time.Duration) (*cloudwatchBatchingHook, error) {

	awsSession, err := session.NewSession(awsconf)
	if err != nil {
		return nil, err
	}

	h := &cloudwatchBatchingHook{
		client: cloudwatchlogs.New(awsSession),
		group:  group,
		stream: stream,
	}

	streams, err := h.client.DescribeLogStreams(&cloudwatchlogs.DescribeLogStreamsInput{
		LogGroupName:        aws.String(group),
		LogStreamNamePrefix: aws.String(stream),
	})
	if err != nil {
		return nil, err
	}

	for _, s := range streams.LogStreams {
		if aws.StringValue(s.LogStreamName) == stream {
			h.nextToken = s.UploadSequenceToken
			break
		}
	}

	go func() {
		for range time.Tick(flushInterval) {
			h.Flush()
		}
	}()

	return h, nil
}

func (h *cloudwatchBatchingHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *cloudwatchBatchingHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	eventBytes := len(line) + perEventOverhead

	if h.pendingBytes+eventBytes > maxBatchBytes || len(h.pending) >= maxEventsPerBatch {
		h.flushLocked()
	}

	h.pending = append(h.pending, &cloudwatchlogs.InputLogEvent{
		Message:   aws.String(line),
		Timestamp: aws.Int64(entry.Time.UnixNano() / int64(time.Millisecond)),
	})
	h.pendingBytes += eventBytes

	return nil
}

// Flush ships any buffered log events
func (h *cloudwatchBatchingHook) Flush() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.flushLocked()
}

func (h *cloudwatchBatchingHook) flushLocked() {
	if len(h.pending) == 0 {
		return
	}

	resp, err := h.client.PutLogEvents(&cloudwatchlogs.PutLogEventsInput{
		LogEvents:     h.pending,
		LogGroupName:  aws.String(h.group),
		LogStreamName: aws.String(h.stream),
		SequenceToken: h.nextToken,
	})

	if err != nil {
		fmt.Fprintln(os.Stderr, "Unable to ship log events to CloudWatch:", err)
	} else {
		h.nextToken = resp.NextSequenceToken
	}

	h.pending = nil
	h.pendingBytes = 0
}

package stream

import (
	"fmt"

	"github.com/RishiKendai/pairwise/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	fieldAlignmentID  = "alignmentId"
	fieldUserID       = "userId"
	fieldFile1Name    = "file1Name"
	fieldFile1Content = "file1Content"
	fieldFile2Name    = "file2Name"
	fieldFile2Content = "file2Content"
)

// StreamMessage is one stream entry with its string fields
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseAlignmentRequest validates the fields of a queued alignment. File
// contents may be empty; every other field is required.
func ParseAlignmentRequest(msg *StreamMessage) (*models.AlignmentRequest, error) {
	for _, key := range []string{fieldAlignmentID, fieldUserID, fieldFile1Name, fieldFile2Name} {
		if msg.Fields[key] == "" {
			return nil, fmt.Errorf("message %s: missing field %q", msg.ID, key)
		}
	}
	for _, key := range []string{fieldFile1Content, fieldFile2Content} {
		if _, ok := msg.Fields[key]; !ok {
			return nil, fmt.Errorf("message %s: missing field %q", msg.ID, key)
		}
	}

	return &models.AlignmentRequest{
		AlignmentID:  msg.Fields[fieldAlignmentID],
		UserID:       msg.Fields[fieldUserID],
		File1Name:    msg.Fields[fieldFile1Name],
		File1Content: msg.Fields[fieldFile1Content],
		File2Name:    msg.Fields[fieldFile2Name],
		File2Content: msg.Fields[fieldFile2Content],
	}, nil
}

// requestFields flattens a request into XADD values
func requestFields(req *models.AlignmentRequest) map[string]interface{} {
	return map[string]interface{}{
		fieldAlignmentID:  req.AlignmentID,
		fieldUserID:       req.UserID,
		fieldFile1Name:    req.File1Name,
		fieldFile1Content: req.File1Content,
		fieldFile2Name:    req.File2Name,
		fieldFile2Content: req.File2Content,
	}
}

func toStreamMessage(msg *redis.XMessage) *StreamMessage {
	fields := make(map[string]string, len(msg.Values))
	for key, val := range msg.Values {
		if value, ok := val.(string); ok {
			fields[key] = value
		}
	}
	return &StreamMessage{ID: msg.ID, Fields: fields}
}

// deadLetterFields identifies a failed request without its file contents
func deadLetterFields(req *models.AlignmentRequest) map[string]interface{} {
	return map[string]interface{}{
		fieldAlignmentID: req.AlignmentID,
		fieldUserID:      req.UserID,
		fieldFile1Name:   req.File1Name,
		fieldFile2Name:   req.File2Name,
	}
}

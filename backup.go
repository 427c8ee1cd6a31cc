package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"bitbucket.org/mmdatafocus/webshop_backend/config"
	"bitbucket.org/mmdatafocus/webshop_backend/google"
	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"bitbucket.org/mmdatafocus/webshop_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PubSubMessage struct {
	Message struct {
		Data []byte `json:"data,omitempty"`
		ID   string `json:"id"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// backupDispatchHandler fans out one Pub/Sub message per enabled Drive
// account. The push subscription delivers each back to /pubsub/backup, so a
// slow or broken account only retries its own message.
func backupDispatchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		dispatched, err := google.DispatchBackups(c.Request.Context(), config.GetDB(), cid)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"dispatched":     dispatched,
			"correlation_id": cid,
		})
	}
}

// backupPubSubHandler processes one backup job delivered by the push
// subscription. Malformed messages are acked so they never loop; transient
// failures return 500 so Pub/Sub redelivers.
func backupPubSubHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			config.LogError(logger, "backup.go", "backupPubSubHandler", "io.ReadAll", nil, err)
			// Malformed request body: ack/drop to avoid infinite retries.
			c.Status(http.StatusNoContent)
			return
		}

		var msg PubSubMessage
		// byte slice unmarshalling handles base64 decoding.
		if err := json.Unmarshal(body, &msg); err != nil {
			config.LogError(logger, "backup.go", "backupPubSubHandler", "Unmarshal body", body, err)
			c.Status(http.StatusNoContent)
			return
		}

		var job config.BackupJobMessage
		if err := json.Unmarshal(msg.Message.Data, &job); err != nil {
			config.LogError(logger, "backup.go", "backupPubSubHandler", "Unmarshal backup job", msg.Message.Data, err)
			c.Status(http.StatusNoContent)
			return
		}
		if job.AccountId <= 0 {
			config.LogError(logger, "backup.go", "backupPubSubHandler", "Invalid backup job (missing account_id)", job, errors.New("account_id required"))
			c.Status(http.StatusNoContent)
			return
		}

		// Correlation ID propagation: prefer payload correlation_id; fall back to Pub/Sub message ID.
		correlationId := job.CorrelationId
		if correlationId == "" {
			correlationId = msg.Message.ID
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationId)

		db := config.GetDB()
		account, err := models.GetBackupAccountById(ctx, db, job.AccountId)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Account deleted since dispatch: ack.
			logger.WithFields(logrus.Fields{
				"account_id": job.AccountId,
				"message_id": msg.Message.ID,
			}).Warn("backup account no longer exists; dropping job")
			c.Status(http.StatusNoContent)
			return
		}
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		if !account.EnableBackup {
			c.Status(http.StatusNoContent)
			return
		}

		result, err := google.RunBackupForAccount(ctx, db, account)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"account_id":     job.AccountId,
				"email":          job.Email,
				"message_id":     msg.Message.ID,
				"correlation_id": correlationId,
			}).Error("backup job failed: " + err.Error())
			// Non-2xx tells Pub/Sub to retry (and potentially route to DLQ).
			c.Status(http.StatusInternalServerError)
			return
		}

		logger.WithFields(logrus.Fields{
			"account_id":     result.AccountId,
			"uploaded":       len(result.Uploaded),
			"failed":         len(result.Failed),
			"correlation_id": correlationId,
		}).Info("backup job completed")
		c.Status(http.StatusNoContent)
	}
}

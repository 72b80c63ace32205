package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/linkup-api/internal/config"
)

// Sender publishes outbound mail jobs to an SNS topic. The production mail
// pipeline consumes the topic and performs the actual delivery, so the API
// process never blocks on an SMTP handshake.
type Sender struct {
	client   *sns.Client
	topicARN string
}

type mailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func NewSender(cfg *config.Config) (*Sender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &Sender{client: sns.NewFromConfig(awsCfg), topicARN: cfg.SNSTopicARN}, nil
}

// SendEmail satisfies the same contract as the SMTP mailer: hand the message
// to the delivery pipeline and return.
func (s *Sender) SendEmail(to, subject, body string) error {
	payload, err := json.Marshal(mailJob{To: to, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("marshal mail job: %w", err)
	}
	_, err = s.client.Publish(context.Background(), &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(string(payload)),
	})
	return err
}

package utils

import (
	"fmt"
	"log"

	"github.com/go-resty/resty/v2"

	"lms/config"
)

// SendSMS pushes a short notification text to a mobile number through the
// bulk SMS gateway. Failures are logged only; notifications never fail the
// request that triggered them.
func SendSMS(mobile, message string) error {
	if config.AppConfig.SmsApiKey == "" || mobile == "" {
		return nil
	}

	client := resty.New()
	resp, err := client.R().
		SetQueryParams(map[string]string{
			"authorization": config.AppConfig.SmsApiKey,
			"route":         "q",
			"sender_id":     config.AppConfig.SmsSender,
			"message":       message,
			"numbers":       mobile,
		}).
		Get(config.AppConfig.SmsApiURL)
	if err != nil {
		log.Printf("Error while sending SMS: %v", err)
		return err
	}

	if resp.StatusCode() != 200 {
		log.Printf("Failed to send SMS, response code: %d", resp.StatusCode())
		return fmt.Errorf("failed to send SMS, code: %d", resp.StatusCode())
	}

	return nil
}

// SendEnrollmentSMS notifies a learner about a new enrollment.
func SendEnrollmentSMS(mobile, courseTitle, cohortName string) {
	SendSMS(mobile, fmt.Sprintf("You have been enrolled into %s (%s).", courseTitle, cohortName))
}

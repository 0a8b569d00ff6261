/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package notification

import (
	"errors"
	"net/http"
	"time"

	"github.com/blnkfinance/tracsync/config"
	"github.com/blnkfinance/tracsync/internal/request"
	"github.com/sirupsen/logrus"
)

type slackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

func buildSlackMessage(project string, err error, at time.Time) slackMessage {
	return slackMessage{Blocks: []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: "Error From " + project + " 🐞", Emoji: true}},
		{Type: "section", Fields: []slackText{{Type: "mrkdwn", Text: "*Error:*\n" + err.Error()}}},
		{Type: "section", Fields: []slackText{{Type: "mrkdwn", Text: "*Time:*\n" + at.Format(time.RFC822)}}},
	}}
}

// SlackNotification posts err to the given Slack incoming webhook.
//
// Parameters:
// - webhookURL: The Slack incoming webhook address.
// - project: The project name shown in the message header.
// - err: The error to be reported.
//
// Returns:
// - error: An error if the payload could not be built or Slack rejected it.
func SlackNotification(webhookURL, project string, err error) error {
	if webhookURL == "" {
		return errors.New("slack webhook url is empty")
	}
	if err == nil {
		return nil
	}

	payload, e := request.ToJsonReq(buildSlackMessage(project, err, time.Now()))
	if e != nil {
		return e
	}

	req, e := http.NewRequest(http.MethodPost, webhookURL, payload)
	if e != nil {
		return e
	}

	// Slack answers with a plain "ok" body.
	_, e = request.Call(req, nil)
	return e
}

// NotifyError logs systemError and forwards it to Slack when a webhook is configured.
// It blocks until the webhook call returns so a command about to exit does not lose it.
func NotifyError(systemError error) {
	if systemError == nil {
		return
	}
	logrus.Error(systemError)

	conf, err := config.Fetch()
	if err != nil {
		logrus.Debug(err)
		return
	}

	if conf.Notification.Slack.WebhookUrl == "" {
		return
	}

	if err := SlackNotification(conf.Notification.Slack.WebhookUrl, conf.ProjectName, systemError); err != nil {
		logrus.WithError(err).Warn("failed to deliver slack notification")
	}
}

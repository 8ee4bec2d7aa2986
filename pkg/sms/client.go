package sms

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the Africa's Talking SMS API.
// Docs: https://developers.africastalking.com/docs/sms/sending
type Client struct {
	BaseURL    string
	Username   string
	APIKey     string
	SenderID   string
	HTTPClient *http.Client
}

type Recipient struct {
	Number     string `json:"number"`
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	MessageID  string `json:"messageId"`
	Cost       string `json:"cost"`
}

type SendMessageResponse struct {
	SMSMessageData struct {
		Message    string      `json:"Message"`
		Recipients []Recipient `json:"Recipients"`
	} `json:"SMSMessageData"`
}

func NewClient(baseURL, username, apiKey, senderID string) *Client {
	return &Client{
		BaseURL:  baseURL,
		Username: username,
		APIKey:   apiKey,
		SenderID: senderID,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Convert phone number to E.164 for Eswatini (+268)
func (c *Client) convertPhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	if strings.HasPrefix(phone, "268") {
		return "+" + phone
	}
	return "+268" + strings.TrimPrefix(phone, "0")
}

// Send an SMS via Africa's Talking
func (c *Client) SendMessage(phone, message string) (*SendMessageResponse, error) {
	form := url.Values{}
	form.Set("username", c.Username)
	form.Set("to", c.convertPhoneNumber(phone))
	form.Set("message", message)
	form.Set("from", c.SenderID)

	req, err := http.NewRequest("POST", c.BaseURL+"/version1/messaging", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sms send failed: %s %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var response SendMessageResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &response, nil
}

// Send simple text message
func (c *Client) SendTextMessage(phone, message string) error {
	_, err := c.SendMessage(phone, message)
	return err
}

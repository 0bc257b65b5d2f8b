// Package client contains Cobra CLI commands that talk to a running
// memqueue server over its HTTP API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewQueueCommand constructs the `queue` command group and subcommands.
func NewQueueCommand(baseURL BaseURLFunc) *cobra.Command {
	queueCmd := &cobra.Command{Use: "queue", Short: "Queue operations"}

	queueCmd.AddCommand(
		newPutCommand(baseURL),
		newGetCommand(baseURL),
		newLastCommand(baseURL),
		newNextCommand(baseURL),
		newListCommand(baseURL),
		newDeleteCommand(baseURL),
		newPurgeCommand(baseURL),
		newCheckCommand(baseURL),
		newTailCommand(baseURL),
	)
	return queueCmd
}

// NewClientIDCommand constructs the `clientid` command.
func NewClientIDCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "clientid",
		Short: "Mint a fresh client ID",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out struct {
				ClientID string `json:"clientId"`
			}
			if err := postJSON(cmd, baseURL()+"/v1/clients/new", struct{}{}, &out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.ClientID)
			return nil
		},
	}
}

func newPutCommand(baseURL BaseURLFunc) *cobra.Command {
	putCmd := &cobra.Command{
		Use:   "put",
		Short: "Write a message to a queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mq, _ := cmd.Flags().GetString("queue")
			clientID, _ := cmd.Flags().GetString("client")
			payload, _ := cmd.Flags().GetString("payload")
			body := map[string]any{"queue": mq, "clientId": clientID, "payload": []byte(payload)}
			var out struct {
				Key string `json:"key"`
			}
			if err := postJSON(cmd, baseURL()+"/v1/queues/put", body, &out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Key)
			return nil
		},
	}
	putCmd.Flags().StringP("queue", "q", "", "Queue name")
	putCmd.Flags().StringP("client", "c", "", "Client ID")
	putCmd.Flags().StringP("payload", "p", "", "Message payload")
	_ = putCmd.MarkFlagRequired("queue")
	_ = putCmd.MarkFlagRequired("payload")
	return putCmd
}

func newGetCommand(baseURL BaseURLFunc) *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Read a message by key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mq, _ := cmd.Flags().GetString("queue")
			key, _ := cmd.Flags().GetString("key")
			clientID, _ := cmd.Flags().GetString("client")
			body := map[string]string{"queue": mq, "key": key, "clientId": clientID}
			return printPayload(cmd, baseURL()+"/v1/queues/get", body)
		},
	}
	getCmd.Flags().StringP("queue", "q", "", "Queue name")
	getCmd.Flags().StringP("key", "k", "", "Message key")
	getCmd.Flags().StringP("client", "c", "", "Client ID")
	_ = getCmd.MarkFlagRequired("queue")
	_ = getCmd.MarkFlagRequired("key")
	return getCmd
}

func newLastCommand(baseURL BaseURLFunc) *cobra.Command {
	lastCmd := &cobra.Command{
		Use:   "last",
		Short: "Read the most recent message",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mq, _ := cmd.Flags().GetString("queue")
			clientID, _ := cmd.Flags().GetString("client")
			body := map[string]string{"queue": mq, "clientId": clientID}
			return printPayload(cmd, baseURL()+"/v1/queues/last", body)
		},
	}
	lastCmd.Flags().StringP("queue", "q", "", "Queue name")
	lastCmd.Flags().StringP("client", "c", "", "Client ID")
	_ = lastCmd.MarkFlagRequired("queue")
	return lastCmd
}

func newNextCommand(baseURL BaseURLFunc) *cobra.Command {
	nextCmd := &cobra.Command{
		Use:   "next",
		Short: "Read the next unseen message for a client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mq, _ := cmd.Flags().GetString("queue")
			clientID, _ := cmd.Flags().GetString("client")
			body := map[string]string{"queue": mq, "clientId": clientID}
			return printPayload(cmd, baseURL()+"/v1/queues/next", body)
		},
	}
	nextCmd.Flags().StringP("queue", "q", "", "Queue name")
	nextCmd.Flags().StringP("client", "c", "", "Client ID")
	_ = nextCmd.MarkFlagRequired("queue")
	return nextCmd
}

func newListCommand(baseURL BaseURLFunc) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List message keys in the recent window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mq, _ := cmd.Flags().GetString("queue")
			clientID, _ := cmd.Flags().GetString("client")
			window, _ := cmd.Flags().GetInt("window")
			filter, _ := cmd.Flags().GetString("filter")
			body := map[string]any{"queue": mq, "clientId": clientID, "windowMinutes": window, "filter": filter}
			var out struct {
				Keys []string `json:"keys"`
			}
			if err := postJSON(cmd, baseURL()+"/v1/queues/list", body, &out); err != nil {
				return err
			}
			for _, k := range out.Keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
	listCmd.Flags().StringP("queue", "q", "", "Queue name")
	listCmd.Flags().StringP("client", "c", "", "Client ID")
	listCmd.Flags().Int("window", 10, "Window in minutes")
	listCmd.Flags().String("filter", "", "CEL filter (server-side)")
	_ = listCmd.MarkFlagRequired("queue")
	return listCmd
}

func newDeleteCommand(baseURL BaseURLFunc) *cobra.Command {
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a message by key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mq, _ := cmd.Flags().GetString("queue")
			key, _ := cmd.Flags().GetString("key")
			body := map[string]string{"queue": mq, "key": key}
			var out struct {
				Removed bool `json:"removed"`
			}
			if err := postJSON(cmd, baseURL()+"/v1/queues/delete", body, &out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "removed:", out.Removed)
			return nil
		},
	}
	deleteCmd.Flags().StringP("queue", "q", "", "Queue name")
	deleteCmd.Flags().StringP("key", "k", "", "Message key")
	_ = deleteCmd.MarkFlagRequired("queue")
	_ = deleteCmd.MarkFlagRequired("key")
	return deleteCmd
}

func newPurgeCommand(baseURL BaseURLFunc) *cobra.Command {
	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every message in the recent window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mq, _ := cmd.Flags().GetString("queue")
			clientID, _ := cmd.Flags().GetString("client")
			window, _ := cmd.Flags().GetInt("window")
			body := map[string]any{"queue": mq, "clientId": clientID, "windowMinutes": window}
			if err := postJSON(cmd, baseURL()+"/v1/queues/purge", body, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "purged")
			return nil
		},
	}
	purgeCmd.Flags().StringP("queue", "q", "", "Queue name")
	purgeCmd.Flags().StringP("client", "c", "", "Client ID")
	purgeCmd.Flags().Int("window", 30, "Window in minutes")
	_ = purgeCmd.MarkFlagRequired("queue")
	return purgeCmd
}

func newCheckCommand(baseURL BaseURLFunc) *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Show the last write time of a queue (0 = never)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mq, _ := cmd.Flags().GetString("queue")
			u := baseURL() + "/v1/queues/check?queue=" + url.QueryEscape(mq)
			resp, err := http.Get(u)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("check failed: %s", resp.Status)
			}
			var out struct {
				LastWrite int64 `json:"lastWrite"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.LastWrite)
			return nil
		},
	}
	checkCmd.Flags().StringP("queue", "q", "", "Queue name")
	_ = checkCmd.MarkFlagRequired("queue")
	return checkCmd
}

// postJSON posts body to url and decodes the JSON response into out
// when out is non-nil. Non-2xx responses become errors.
func postJSON(cmd *cobra.Command, url string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// printPayload posts body to url and prints the decoded payload, or
// "(no message)" when the server returned none.
func printPayload(cmd *cobra.Command, url string, body any) error {
	var out struct {
		Payload []byte `json:"payload"`
	}
	if err := postJSON(cmd, url, body, &out); err != nil {
		return err
	}
	if out.Payload == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "(no message)")
		return nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	return enc.Encode(decodedMessage(out.Payload))
}

package client

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// newTailCommand constructs the `queue tail` subcommand, which follows
// the server's SSE stream and prints each message as it arrives.
func newTailCommand(baseURL BaseURLFunc) *cobra.Command {
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow a queue, printing new messages as they arrive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mq, _ := cmd.Flags().GetString("queue")
			clientID, _ := cmd.Flags().GetString("client")
			limit, _ := cmd.Flags().GetInt("limit")

			u := fmt.Sprintf("%s/v1/queues/tail?queue=%s&clientId=%s",
				baseURL(), url.QueryEscape(mq), url.QueryEscape(clientID))
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, u, nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("tail failed: %s", resp.Status)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			seen := 0
			var event string
			scanner := bufio.NewScanner(resp.Body)
			scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
			for scanner.Scan() {
				line := scanner.Text()
				switch {
				case strings.HasPrefix(line, "event: "):
					event = strings.TrimPrefix(line, "event: ")
				case strings.HasPrefix(line, "data: "):
					data := strings.TrimPrefix(line, "data: ")
					if event == "error" {
						return fmt.Errorf("server: %s", data)
					}
					payload, err := base64.StdEncoding.DecodeString(data)
					if err != nil {
						return fmt.Errorf("bad event data: %w", err)
					}
					if err := enc.Encode(decodedMessage(payload)); err != nil {
						return err
					}
					seen++
					if limit > 0 && seen >= limit {
						return nil
					}
				}
			}
			return scanner.Err()
		},
	}
	tailCmd.Flags().StringP("queue", "q", "", "Queue name")
	tailCmd.Flags().StringP("client", "c", "", "Client ID (cursor owner)")
	tailCmd.Flags().Int("limit", 0, "Stop after N messages (0 = infinite)")
	_ = tailCmd.MarkFlagRequired("queue")
	return tailCmd
}

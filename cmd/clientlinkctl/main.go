package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	APIKey    string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	u := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, u, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("X-Admin-API-Key", c.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func (c *client) run(method, path string, body []byte) error {
	status, respBody, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return fmt.Errorf("%s %s failed: status=%d body=%s", method, path, status, string(respBody))
	}
	c.print(status, respBody)
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	var (
		baseURL = envOr("CLIENTLINK_ADMIN_URL", "http://localhost:8080")
		apiKey  = envOr("CLIENTLINK_ADMIN_KEY", "")
		out     = envOr("CLIENTLINK_OUT", "text")
	)

	root := &cobra.Command{
		Use:   "clientlinkctl",
		Short: "Admin CLI for the clientlink onboarding service (talks to /v1/admin)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" {
				return fmt.Errorf("missing API key (flag --admin-api-key or env CLIENTLINK_ADMIN_KEY)")
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&baseURL, "admin-api-url", baseURL, "base URL of the admin API (env CLIENTLINK_ADMIN_URL)")
	root.PersistentFlags().StringVar(&apiKey, "admin-api-key", apiKey, "admin API key (env CLIENTLINK_ADMIN_KEY)")
	root.PersistentFlags().StringVar(&out, "out", out, "output format: json|text")

	cl := &client{BaseURL: baseURL, APIKey: apiKey, OutFormat: out, HTTP: &http.Client{Timeout: 30 * time.Second}}

	// links
	linksCmd := &cobra.Command{Use: "links", Short: "Manage onboarding links"}

	var createPlatforms, createNote, createBy, createExpiresIn string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an onboarding link",
		RunE: func(cmd *cobra.Command, args []string) error {
			platforms := splitCSV(createPlatforms)
			if len(platforms) == 0 {
				return fmt.Errorf("--platforms is required (comma separated, e.g. meta,google)")
			}
			payload := map[string]any{"platforms": platforms}
			if createNote != "" {
				payload["note"] = createNote
			}
			if createBy != "" {
				payload["created_by"] = createBy
			}
			if createExpiresIn != "" {
				payload["expires_in"] = createExpiresIn
			}
			b, _ := json.Marshal(payload)
			return cl.run("POST", "/v1/admin/links", b)
		},
	}
	createCmd.Flags().StringVar(&createPlatforms, "platforms", "", "platforms the link covers (comma separated)")
	createCmd.Flags().StringVar(&createNote, "note", "", "free-form note, e.g. the client's name")
	createCmd.Flags().StringVar(&createBy, "created-by", "", "who created the link")
	createCmd.Flags().StringVar(&createExpiresIn, "expires-in", "", "lifetime as a Go duration, e.g. 72h")

	var listLimit, listOffset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List onboarding links, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if listLimit > 0 {
				q.Set("limit", fmt.Sprint(listLimit))
			}
			if listOffset > 0 {
				q.Set("offset", fmt.Sprint(listOffset))
			}
			path := "/v1/admin/links"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}
			return cl.run("GET", path, nil)
		},
	}
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "max links to return")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "offset into the result set")

	getCmd := &cobra.Command{
		Use:   "get <token>",
		Short: "Show one link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.run("GET", "/v1/admin/links/"+url.PathEscape(args[0]), nil)
		},
	}

	revokeCmd := &cobra.Command{
		Use:   "revoke <token>",
		Short: "Revoke a link so it can no longer be used",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one token")
			}
			return cl.run("DELETE", "/v1/admin/links/"+url.PathEscape(args[0]), nil)
		},
	}

	linksCmd.AddCommand(createCmd, listCmd, getCmd, revokeCmd)

	// authorizations
	authCmd := &cobra.Command{Use: "authorizations", Short: "Inspect stored authorizations"}

	var authClientID string
	authListCmd := &cobra.Command{
		Use:   "list",
		Short: "List authorizations for a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			if authClientID == "" {
				return fmt.Errorf("--client is required")
			}
			return cl.run("GET", "/v1/admin/authorizations?client_id="+url.QueryEscape(authClientID), nil)
		},
	}
	authListCmd.Flags().StringVar(&authClientID, "client", "", "client id")

	authGetCmd := &cobra.Command{
		Use:   "get <client-id> <platform>",
		Short: "Show one authorization",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.run("GET", "/v1/admin/authorizations/"+url.PathEscape(args[0])+"/"+url.PathEscape(args[1]), nil)
		},
	}

	authCmd.AddCommand(authListCmd, authGetCmd)

	// oauth
	oauthCmd := &cobra.Command{Use: "oauth", Short: "Admin-initiated OAuth flows"}

	var startPlatform, startAdminID string
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Get an authorization URL for the admin's own account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if startPlatform == "" {
				return fmt.Errorf("--platform is required")
			}
			if startAdminID == "" {
				return fmt.Errorf("--admin-id is required")
			}
			b, _ := json.Marshal(map[string]string{"admin_id": startAdminID})
			return cl.run("POST", "/v1/admin/oauth/"+url.PathEscape(startPlatform)+"/start", b)
		},
	}
	startCmd.Flags().StringVar(&startPlatform, "platform", "", "platform id (meta|google|tiktok|shopify)")
	startCmd.Flags().StringVar(&startAdminID, "admin-id", "", "admin identifier stored with the grant (uuid or email)")

	oauthCmd.AddCommand(startCmd)

	// ping: cheapest authenticated call
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Check admin API reachability and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/v1/admin/links?limit=1", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("ping failed: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, []byte(`{"ok":true}`))
			return nil
		},
	}

	root.AddCommand(linksCmd, authCmd, oauthCmd, pingCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

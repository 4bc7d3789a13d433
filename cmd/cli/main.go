package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	rootCmd   = &cobra.Command{
		Use:   "tunefetch",
		Short: "Tunefetch CLI - resolve and fetch music across platforms",
		Long:  `A command-line client for the tunefetch resolution service.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(getCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Resolve a query to candidates across platforms",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := ""
		for i, a := range args {
			if i > 0 {
				query += " "
			}
			query += a
		}

		payload, _ := json.Marshal(map[string]string{"query": query})
		resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewBuffer(payload))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusNotFound {
			fmt.Println("no results found")
			os.Exit(1)
		}
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var result struct {
			Platform   string `json:"platform"`
			Candidates []struct {
				ID        string `json:"id"`
				Title     string `json:"title"`
				Uploader  string `json:"uploader"`
				SourceURL string `json:"source_url"`
			} `json:"candidates"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("platform: %s\n\n", result.Platform)
		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "#\tTITLE\tUPLOADER\tURL")
		for i, c := range result.Candidates {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, c.Title, c.Uploader, c.SourceURL)
		}
		w.Flush()
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [source-url]",
	Short: "Download and transcode one candidate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		platform, _ := cmd.Flags().GetString("platform")
		title, _ := cmd.Flags().GetString("title")

		payload, _ := json.Marshal(map[string]string{
			"source_url": args[0],
			"platform":   platform,
			"title":      title,
		})
		resp, err := http.Post(serverURL+"/api/v1/fetch", "application/json", bytes.NewBuffer(payload))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var result struct {
			RequestID string `json:"request_id"`
			Result    struct {
				FilePath string `json:"file_path"`
				Size     int64  `json:"size"`
			} `json:"result"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("fetched: %s (%d bytes)\nrequest: %s\n",
			result.Result.FilePath, result.Result.Size, result.RequestID)
	},
}

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List recent requests",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		resp, err := http.Get(fmt.Sprintf("%s/api/v1/requests?limit=%d", serverURL, limit))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var records []struct {
			ID       string `json:"id"`
			Query    string `json:"query"`
			Platform string `json:"platform"`
			Status   string `json:"status"`
			Title    string `json:"title"`
		}
		if err := json.Unmarshal(body, &records); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tQUERY\tPLATFORM\tSTATUS\tTITLE")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID[:8], r.Query, r.Platform, r.Status, r.Title)
		}
		w.Flush()
	},
}

var getCmd = &cobra.Command{
	Use:   "get [request-id]",
	Short: "Show one request",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(serverURL + "/api/v1/requests/" + args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err != nil {
			fmt.Println(string(body))
			return
		}
		fmt.Println(pretty.String())
	},
}

func init() {
	fetchCmd.Flags().String("platform", "", "Platform tag of the candidate")
	fetchCmd.Flags().String("title", "", "Candidate title (for naming the artifact)")
	requestsCmd.Flags().Int("limit", 20, "Number of requests to list")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

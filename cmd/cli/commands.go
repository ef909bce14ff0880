package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	listPosition   string
	listTeam       string
	listStatus     string
	listTournament int
	listSort       string
	listOrder      string
	listSearch     string
	listMinGoals   int
	listPage       int
	listPerPage    int

	searchLimit      int
	searchTournament int

	statusNotes string

	topPeriod string
	topLimit  int

	uploadTournament int
	uploadKind       string
	uploadSeason     string
	uploadRound      int

	lastTournament int
	lastKind       string

	clearConfirm bool
)

func init() {
	playersCmd.Flags().StringVar(&listPosition, "position", "", "Filter by position")
	playersCmd.Flags().StringVar(&listTeam, "team", "", "Filter by team name")
	playersCmd.Flags().StringVar(&listStatus, "status", "", "Filter by tracking status")
	playersCmd.Flags().IntVar(&listTournament, "tournament", 0, "Filter by tournament id")
	playersCmd.Flags().StringVar(&listSort, "sort", "", "Sort field")
	playersCmd.Flags().StringVar(&listOrder, "order", "", "Sort order (asc or desc)")
	playersCmd.Flags().StringVar(&listSearch, "search", "", "Free-text name search")
	playersCmd.Flags().IntVar(&listMinGoals, "min-goals", 0, "Minimum goals")
	playersCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	playersCmd.Flags().IntVar(&listPerPage, "per-page", 50, "Page size")

	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "Maximum results")
	searchCmd.Flags().IntVar(&searchTournament, "tournament", 0, "Restrict to a tournament id")

	statusCmd.Flags().StringVar(&statusNotes, "notes", "", "Scouting notes to attach")

	topCmd.Flags().StringVar(&topPeriod, "period", "all_time", "Ranking period (all_time or last_round)")
	topCmd.Flags().IntVar(&topLimit, "limit", 10, "Number of entries")

	uploadCmd.Flags().IntVar(&uploadTournament, "tournament", 0, "Target tournament id")
	uploadCmd.Flags().StringVar(&uploadKind, "kind", "", "Stat slice (total or per90, detected from the filename when omitted)")
	uploadCmd.Flags().StringVar(&uploadSeason, "season", "", "Season label, e.g. 2025/26")
	uploadCmd.Flags().IntVar(&uploadRound, "round", 0, "Round number")
	uploadCmd.MarkFlagRequired("tournament")
	uploadCmd.MarkFlagRequired("season")
	uploadCmd.MarkFlagRequired("round")

	lastUploadCmd.Flags().IntVar(&lastTournament, "tournament", 0, "Tournament id")
	lastUploadCmd.Flags().StringVar(&lastKind, "kind", "", "Stat slice (total or per90)")
	lastUploadCmd.MarkFlagRequired("tournament")

	clearTournamentCmd.Flags().BoolVar(&clearConfirm, "confirm", false, "Actually wipe the tournament's players")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(backendCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(trackedCmd)
	rootCmd.AddCommand(tournamentsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(columnsCmd)
	rootCmd.AddCommand(setColumnsCmd)
	rootCmd.AddCommand(columnsPresetCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(lastUploadCmd)
	rootCmd.AddCommand(invalidateCmd)
	rootCmd.AddCommand(clearTournamentCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Check the health of the stats backend behind the gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/health")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List players with filters, sorting and pagination",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if listPosition != "" {
			params.Set("position", listPosition)
		}
		if listTeam != "" {
			params.Set("team_name", listTeam)
		}
		if listStatus != "" {
			params.Set("tracking_status", listStatus)
		}
		if cmd.Flags().Changed("tournament") {
			params.Set("tournament_id", strconv.Itoa(listTournament))
		}
		if listSort != "" {
			params.Set("sort_field", listSort)
		}
		if listOrder != "" {
			params.Set("sort_order", listOrder)
		}
		if listSearch != "" {
			params.Set("search_query", listSearch)
		}
		if cmd.Flags().Changed("min-goals") {
			params.Set("min_goals", strconv.Itoa(listMinGoals))
		}
		params.Set("page", strconv.Itoa(listPage))
		params.Set("per_page", strconv.Itoa(listPerPage))
		return performGetRequest("/api/players?" + params.Encode())
	},
}

var playerCmd = &cobra.Command{
	Use:   "player [id]",
	Short: "Show one player with the formatted stat card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/players/" + url.PathEscape(args[0]))
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search players by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("query", args[0])
		params.Set("limit", strconv.Itoa(searchLimit))
		if cmd.Flags().Changed("tournament") {
			params.Set("tournament_id", strconv.Itoa(searchTournament))
		}
		return performGetRequest("/api/players/search?" + params.Encode())
	},
}

var trackedCmd = &cobra.Command{
	Use:   "tracked",
	Short: "List players with a tracking status above the default",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/players/tracked")
	},
}

var tournamentsCmd = &cobra.Command{
	Use:   "tournaments",
	Short: "List the tournaments the backend knows about",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/tournaments")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [tournamentID]",
	Short: "Show aggregate stats for one tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/tournaments/" + url.PathEscape(args[0]) + "/stats")
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the top performers ranking",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("period", topPeriod)
		params.Set("limit", strconv.Itoa(topLimit))
		return performGetRequest("/api/top-performers?" + params.Encode())
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [playerID] [status]",
	Short: "Update a player's tracking status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]string{
			"tracking_status": args[1],
			"notes":           statusNotes,
		}
		return performJSONRequest("PUT", "/api/players/"+url.PathEscape(args[0])+"/status", payload)
	},
}

var columnsCmd = &cobra.Command{
	Use:   "columns [owner]",
	Short: "Show an owner's visible table columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/columns?owner=" + url.QueryEscape(args[0]))
	},
}

var setColumnsCmd = &cobra.Command{
	Use:   "set-columns [owner] [column...]",
	Short: "Replace an owner's visible table columns",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]any{
			"owner":   args[0],
			"visible": args[1:],
		}
		return performJSONRequest("PUT", "/api/columns", payload)
	},
}

var columnsPresetCmd = &cobra.Command{
	Use:   "columns-preset [owner] [preset]",
	Short: "Apply a column preset (all, minimum or defaults)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]string{
			"owner":  args[0],
			"preset": args[1],
		}
		return performJSONRequest("POST", "/api/columns/preset", payload)
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a tournament spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performUpload(args[0])
	},
}

var lastUploadCmd = &cobra.Command{
	Use:   "last-upload",
	Short: "Show the last accepted upload for a tournament",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("tournament_id", strconv.Itoa(lastTournament))
		if lastKind != "" {
			params.Set("kind", lastKind)
		}
		return performGetRequest("/api/uploads/last?" + params.Encode())
	},
}

var invalidateCmd = &cobra.Command{
	Use:   "invalidate [namespace...]",
	Short: "Drop cached entries, everything when no namespace is given",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]any{"namespaces": args}
		return performJSONRequest("POST", "/api/admin/invalidate", payload)
	},
}

var clearTournamentCmd = &cobra.Command{
	Use:   "clear-tournament [tournamentID]",
	Short: "Wipe a tournament's players on the backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/api/admin/tournaments/" + url.PathEscape(args[0]) + "/players"
		if clearConfirm {
			endpoint += "?confirm=true"
		}
		return performJSONRequest("DELETE", endpoint, nil)
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show persisted usage counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/admin/usage")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performJSONRequest(method, endpoint string, payload any) error {
	url := host + endpoint
	fmt.Printf("Making %s request to %s\n", method, url)

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performUpload(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("season", uploadSeason)
	mw.WriteField("round", strconv.Itoa(uploadRound))
	if uploadKind != "" {
		mw.WriteField("kind", uploadKind)
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := io.Copy(fw, file); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish form: %w", err)
	}

	url := fmt.Sprintf("%s/api/tournaments/%d/upload", host, uploadTournament)
	fmt.Printf("Uploading %s to %s\n", path, url)

	req, err := http.NewRequest("POST", url, &buf)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}

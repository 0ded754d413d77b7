package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhcgn/eml-extract/discover"
	"github.com/dhcgn/eml-extract/eml"
	"github.com/dhcgn/eml-extract/stats"
)

var (
	statsReportDir string
	statsTopN      int
	statsRecursive bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [directory]",
	Short: "Analyse .eml files and show attachment statistics without extracting",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		if _, err := discover.ValidateDirectory(root); err != nil {
			return err
		}

		files, err := discover.Find(root, statsRecursive)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No EML files found!")
			return nil
		}

		categories := []string{"Extension", "Content-Type", "Subject"}
		counter := make(map[string]map[string]int)
		for _, c := range categories {
			counter[c] = make(map[string]int)
		}

		withAttachments := 0
		withoutAttachments := 0
		attachmentTotal := 0

		for _, file := range files {
			msg, err := eml.Read(file)
			if err != nil {
				return err
			}
			if len(msg.Attachments) == 0 {
				withoutAttachments++
				continue
			}

			withAttachments++
			if msg.Subject != "" {
				counter["Subject"][msg.Subject]++
			}
			for _, att := range msg.Attachments {
				attachmentTotal++
				ext := strings.ToLower(filepath.Ext(att.Filename))
				if ext == "" {
					ext = "(none)"
				}
				counter["Extension"][ext]++
				if att.ContentType != "" {
					counter["Content-Type"][att.ContentType]++
				}
			}
		}

		fmt.Printf("Scanned %d files: %d with attachments, %d without, %d attachments total\n\n",
			len(files), withAttachments, withoutAttachments, attachmentTotal)

		for _, category := range categories {
			fmt.Printf("Top %d by %s:\n", statsTopN, category)
			stats.PrettyPrintTop(counter[category], statsTopN)
			fmt.Println()
		}

		if statsReportDir != "" {
			if err := saveCSVReports(counter, categories, statsReportDir, 1000); err != nil {
				return fmt.Errorf("error saving CSV reports: %w", err)
			}
			fmt.Printf("Reports saved to directory: %s\n", statsReportDir)
		}

		return nil
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsReportDir, "output", "o", "", "Output directory for CSV reports (skipped if empty)")
	statsCmd.Flags().IntVarP(&statsTopN, "top", "t", 10, "Number of top items to display in statistics")
	statsCmd.Flags().BoolVarP(&statsRecursive, "recursive", "r", false, "Search for .eml files recursively")
	rootCmd.AddCommand(statsCmd)
}

func saveCSVReports(counter map[string]map[string]int, categories []string, dir string, limit int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, category := range categories {
		counts := counter[category]

		filename := fmt.Sprintf("report_%s.csv", normalizeCategoryName(category))
		filePath := filepath.Join(dir, filename)

		file, err := os.Create(filePath)
		if err != nil {
			return err
		}

		writer := csv.NewWriter(file)

		if err := writer.Write([]string{"Value", "Count"}); err != nil {
			file.Close()
			return err
		}

		type pair struct {
			Key   string
			Value int
		}
		var pairs []pair
		for k, v := range counts {
			pairs = append(pairs, pair{k, v})
		}
		sort.Slice(pairs, func(i, j int) bool {
			return pairs[i].Value > pairs[j].Value
		})

		for i := 0; i < limit && i < len(pairs); i++ {
			record := []string{
				pairs[i].Key,
				strconv.Itoa(pairs[i].Value),
			}
			if err := writer.Write(record); err != nil {
				file.Close()
				return err
			}
		}

		writer.Flush()
		file.Close()

		if err := writer.Error(); err != nil {
			return err
		}
	}

	return nil
}

func normalizeCategoryName(category string) string {
	name := strings.ToLower(category)
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, " ", "_")
	return name
}

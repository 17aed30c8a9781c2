package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"researchdesk/internal/store"
)

var (
	topicTagsFlag []string
	topicDescFlag string
)

var topicCmd = &cobra.Command{
	Use:   "topic",
	Short: "Manage topic hubs",
}

var topicNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Create a new topic hub",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTopicNew,
}

var topicLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List topic hubs with their activity",
	RunE:  runTopicLs,
}

func init() {
	topicNewCmd.Flags().StringArrayVar(&topicTagsFlag, "tag", nil, "tag (repeatable)")
	topicNewCmd.Flags().StringVarP(&topicDescFlag, "description", "d", "", "what this topic covers")

	topicCmd.AddCommand(topicNewCmd)
	topicCmd.AddCommand(topicLsCmd)
}

func runTopicNew(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")
	topic, err := cache.CreateTopic(title, topicDescFlag, topicTagsFlag)
	if err != nil {
		return err
	}

	fmt.Println(okStyle.Render("topic created"))
	fmt.Println("  slug: " + topic.Meta.Slug)
	fmt.Println("  file: " + topic.FilePath)
	return nil
}

func runTopicLs(cmd *cobra.Command, args []string) error {
	topics := cache.Topics(store.Filter{})
	if len(topics) == 0 {
		fmt.Println(dimStyle.Render("no topics"))
		return nil
	}

	for _, topic := range topics {
		view, err := cache.View(topic.Meta.Slug)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", titleStyle.Render(topic.Meta.Title), dimStyle.Render("("+topic.Meta.Slug+")"))
		fmt.Printf("  %d seeds, %d plans, %d reports, %d sources\n",
			len(view.Seeds), len(view.Plans), len(view.Reports), len(view.Sources))
	}
	return nil
}

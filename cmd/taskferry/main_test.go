package main

import (
	"reflect"
	"testing"

	"github.com/taskferry-labs/taskferry-go/internal/runner"
)

func TestDestinationBuckets(t *testing.T) {
	def := runner.Definition{Tasks: []runner.TaskDef{
		{ID: "a", Type: runner.TypeAPIToStorage, APIToStorage: &runner.APIToStorageDef{Destination: "s3://reports/a.json"}},
		{ID: "b", Type: runner.TypeSQLToSlack, SQLToSlack: &runner.SQLToSlackDef{Filename: "b.csv"}},
		{ID: "c", Type: runner.TypeAPIToStorage, APIToStorage: &runner.APIToStorageDef{Destination: "s3://archive/c.json"}},
		{ID: "d", Type: runner.TypeAPIToStorage, APIToStorage: &runner.APIToStorageDef{Destination: "s3://reports/d.json"}},
	}}
	got := destinationBuckets(def)
	want := []string{"reports", "archive"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("destinationBuckets()=%v, want %v", got, want)
	}
}

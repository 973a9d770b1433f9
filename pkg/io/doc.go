// Package io reads chart input and writes computed layouts as JSON.
//
// # Counts
//
// Pie charts take a JSON object mapping category labels to non-negative
// integer counts:
//
//	{"BURGLARY": 4, "FELONY_ASSAULT": 26, "GRAND_LARCENY": 91}
//
// Use [ReadCounts] for any io.Reader or [ImportCounts] for a file path.
//
// # Records
//
// The grouped bar chart takes a JSON array of borough records:
//
//	[
//	  {"BOROUGH": "BRONX", "Time_Period": "2019", "Total_Crimes": 1204},
//	  {"BOROUGH": "QUEENS", "Time_Period": "2019", "Total_Crimes": 987}
//	]
//
// [ReadRecords], [ImportRecords] and [FetchRecords] (HTTP with retry) all
// report missing fields as a MISSING_FIELD error naming the record index
// and every missing field.
//
// # Layout Export
//
// [WriteLayout] and [ExportLayout] write any layout (pie or bar) as
// indented JSON, the same document the `json` output format produces.
package io

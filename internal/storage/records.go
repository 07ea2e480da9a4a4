package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"

	"github.com/ironclad-grc/ironclad/internal/assess"
)

const (
	clientsCollectionNameConstant          = "clients"
	assessmentsCollectionNameConstant      = "assessments"
	completeRecordStatusConstant           = "complete"
	projectMissingMessageConstant          = "firestore project is not configured"
	firestoreClientErrorTemplateConstant   = "failed to build firestore client: %w"
	recordWriteErrorTemplateConstant       = "failed to persist assessment record: %w"
	clientSummaryWriteErrorTemplateConstant = "failed to update client summary: %w"
	assessmentIdentifierFieldConstant      = "assessment_id"
	clientIdentifierFieldConstant          = "client_id"
	frameworkFieldConstant                 = "framework"
	timestampFieldConstant                 = "timestamp"
	preliminarySummaryFieldConstant        = "preliminary_summary"
	consensusFieldConstant                 = "ai_consensus"
	consensusSeverityFieldConstant         = "severity"
	consensusConfidenceFieldConstant       = "confidence"
	reportURLFieldConstant                 = "report_url"
	recordStatusFieldConstant              = "status"
	latestAssessmentFieldConstant          = "latest_assessment"
	latestAssessmentDateFieldConstant      = "latest_assessment_date"
	latestConsensusFieldConstant           = "latest_consensus"
	pendingConsensusSeverityConstant       = "PENDING"
	totalControlsFieldConstant             = "total_controls"
	potentialCompliantFieldConstant        = "potential_compliant"
	potentialPartialFieldConstant          = "potential_partial"
	potentialGapFieldConstant              = "potential_gap"
)

// RecordWriter persists assessment records and per-client summaries.
type RecordWriter interface {
	WriteAssessmentRecord(executionContext context.Context, clientIdentifier string, assessmentIdentifier string, assessmentRecord map[string]any) error
	MergeClientSummary(executionContext context.Context, clientIdentifier string, clientSummary map[string]any) error
}

// FirestoreRecordWriter writes records to Firestore under
// clients/<client>/assessments/<assessment>.
type FirestoreRecordWriter struct {
	firestoreClient *firestore.Client
}

// NewFirestoreRecordWriter connects to the configured Firestore project.
func NewFirestoreRecordWriter(executionContext context.Context, projectIdentifier string) (*FirestoreRecordWriter, error) {
	if len(strings.TrimSpace(projectIdentifier)) == 0 {
		return nil, errors.New(projectMissingMessageConstant)
	}

	firestoreClient, clientError := firestore.NewClient(executionContext, projectIdentifier)
	if clientError != nil {
		return nil, fmt.Errorf(firestoreClientErrorTemplateConstant, clientError)
	}
	return &FirestoreRecordWriter{firestoreClient: firestoreClient}, nil
}

// WriteAssessmentRecord stores the record document for one assessment.
func (recordWriter *FirestoreRecordWriter) WriteAssessmentRecord(executionContext context.Context, clientIdentifier string, assessmentIdentifier string, assessmentRecord map[string]any) error {
	assessmentReference := recordWriter.firestoreClient.
		Collection(clientsCollectionNameConstant).
		Doc(clientIdentifier).
		Collection(assessmentsCollectionNameConstant).
		Doc(assessmentIdentifier)

	if _, writeError := assessmentReference.Set(executionContext, assessmentRecord); writeError != nil {
		return fmt.Errorf(recordWriteErrorTemplateConstant, writeError)
	}
	return nil
}

// MergeClientSummary merges the latest-assessment fields onto the client document.
func (recordWriter *FirestoreRecordWriter) MergeClientSummary(executionContext context.Context, clientIdentifier string, clientSummary map[string]any) error {
	clientReference := recordWriter.firestoreClient.Collection(clientsCollectionNameConstant).Doc(clientIdentifier)
	if _, mergeError := clientReference.Set(executionContext, clientSummary, firestore.MergeAll); mergeError != nil {
		return fmt.Errorf(clientSummaryWriteErrorTemplateConstant, mergeError)
	}
	return nil
}

// Close releases the Firestore connection.
func (recordWriter *FirestoreRecordWriter) Close() error {
	return recordWriter.firestoreClient.Close()
}

// Recorder turns assessment documents into persisted records.
type Recorder struct {
	recordWriter RecordWriter
}

// NewRecorder wraps a record writer.
func NewRecorder(recordWriter RecordWriter) *Recorder {
	return &Recorder{recordWriter: recordWriter}
}

// RecordAssessment writes the assessment record and refreshes the client
// document with the latest assessment pointers.
func (recorder *Recorder) RecordAssessment(executionContext context.Context, assessmentDocument assess.Document, reportURL string) error {
	assessmentRecord := buildAssessmentRecord(assessmentDocument, reportURL)
	if writeError := recorder.recordWriter.WriteAssessmentRecord(executionContext, assessmentDocument.ClientID, assessmentDocument.AssessmentID, assessmentRecord); writeError != nil {
		return writeError
	}

	consensusSeverity, _ := resolveConsensus(assessmentDocument)
	clientSummary := map[string]any{
		latestAssessmentFieldConstant:     assessmentDocument.AssessmentID,
		latestAssessmentDateFieldConstant: assessmentDocument.Timestamp,
		latestConsensusFieldConstant:      consensusSeverity,
	}
	return recorder.recordWriter.MergeClientSummary(executionContext, assessmentDocument.ClientID, clientSummary)
}

// resolveConsensus reports the document's consensus verdict, defaulting to a
// pending severity with zero confidence when no verdict has been attached.
func resolveConsensus(assessmentDocument assess.Document) (string, float64) {
	if assessmentDocument.AIConsensus == nil {
		return pendingConsensusSeverityConstant, 0
	}
	return assessmentDocument.AIConsensus.Severity, assessmentDocument.AIConsensus.Confidence
}

func buildAssessmentRecord(assessmentDocument assess.Document, reportURL string) map[string]any {
	consensusSeverity, consensusConfidence := resolveConsensus(assessmentDocument)
	return map[string]any{
		assessmentIdentifierFieldConstant: assessmentDocument.AssessmentID,
		clientIdentifierFieldConstant:     assessmentDocument.ClientID,
		frameworkFieldConstant:            assessmentDocument.Framework.ID,
		timestampFieldConstant:            assessmentDocument.Timestamp,
		preliminarySummaryFieldConstant: map[string]any{
			totalControlsFieldConstant:      assessmentDocument.PreliminarySummary.TotalControls,
			potentialCompliantFieldConstant: assessmentDocument.PreliminarySummary.PotentialCompliant,
			potentialPartialFieldConstant:   assessmentDocument.PreliminarySummary.PotentialPartial,
			potentialGapFieldConstant:       assessmentDocument.PreliminarySummary.PotentialGap,
		},
		consensusFieldConstant: map[string]any{
			consensusSeverityFieldConstant:   consensusSeverity,
			consensusConfidenceFieldConstant: consensusConfidence,
		},
		reportURLFieldConstant:    reportURL,
		recordStatusFieldConstant: completeRecordStatusConstant,
	}
}

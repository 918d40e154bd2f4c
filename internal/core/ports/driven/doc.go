// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Classifier: Chooses a MimeClass for a file
//   - Extractor: Turns raw bytes into text and metadata
//   - ExtractorRegistry: Selects the extractor for a MimeClass
//   - PostProcessorPipeline: Splits extracted text into chunks
//   - DocumentStore: Owns documents, chunks and the search index
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ChatModel: Language model for the chat loop. Without it only slash commands work.
//   - CommandRunner: External binaries (OCR, pdftotext). Extractors fall back or
//     report ocr_unavailable.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven

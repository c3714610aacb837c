// Package language maps the recognition language names users write in the
// config ("ch", "zh-tw", "english", ...) onto the codes OCR engines expect.
//
// Tesseract wants traineddata names joined with "+" (chi_sim+eng); the
// mapping keeps Simplified and Traditional Chinese apart because they are
// separate models.
package language

package service

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tieubaoca/docchat-be/types"
	"github.com/tieubaoca/docchat-be/utils"
)

// PDFService extracts page-level text from raw PDF bytes using the poppler
// utilities, with a tesseract OCR fallback for pages pdftotext cannot read.
type PDFService struct {
	tempDir string
}

func NewPDFService(tempDir string) *PDFService {
	if tempDir == "" {
		tempDir = "temp"
	}
	return &PDFService{
		tempDir: tempDir,
	}
}

// ExtractFromBuffer writes the buffer to a temp file and extracts text page
// by page. Pages that fail extraction are kept as blank pages with a warning
// rather than failing the document.
func (s *PDFService) ExtractFromBuffer(pdfBuffer []byte) (*types.ExtractResult, error) {
	if len(pdfBuffer) == 0 {
		return nil, fmt.Errorf("empty PDF buffer")
	}

	if err := os.MkdirAll(s.tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	tempFile, err := os.CreateTemp(s.tempDir, "extract-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if _, err := tempFile.Write(pdfBuffer); err != nil {
		tempFile.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	tempFile.Close()

	totalPages, err := getNumPages(tempPath)
	if err != nil {
		return nil, err
	}
	log.Println("Total pages: ", totalPages)

	pagesData := make([]types.PageContent, 0, totalPages)
	var rawText strings.Builder
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		text, err := s.extractText(tempPath, pageNum)
		if err != nil {
			log.Printf("Warning: failed to extract text from page %d: %v", pageNum, err)
			pagesData = append(pagesData, types.PageContent{Text: "", PageNumber: pageNum})
			continue
		}

		text = s.cleanText(text)
		pagesData = append(pagesData, types.PageContent{
			Text:       text,
			PageNumber: pageNum,
		})
		if text != "" {
			if rawText.Len() > 0 {
				rawText.WriteString("\n")
			}
			rawText.WriteString(text)
		}
	}

	raw := rawText.String()
	return &types.ExtractResult{
		PagesData:        pagesData,
		TotalPages:       totalPages,
		TokenCount:       utils.EstimateTokenCount(raw),
		RawExtractedText: raw,
	}, nil
}

// extractText attempts to extract text from a specific page using multiple methods
func (s *PDFService) extractText(filePath string, pageNumber int) (string, error) {
	text, err := s.extractTextWithPdftotext(filePath, pageNumber)
	if err != nil || text == "" {
		text, err = s.extractTextWithTesseract(filePath, pageNumber)
		if err != nil {
			return "", fmt.Errorf("failed to extract text: %w", err)
		}
	}
	return text, nil
}

// extractTextWithPdftotext extracts text using the pdftotext utility
func (s *PDFService) extractTextWithPdftotext(filePath string, pageNumber int) (string, error) {
	pdftotextCmd := exec.Command("pdftotext", "-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-enc", "UTF-8", "-nopgbrk",
		filePath, "-")
	var txtOut bytes.Buffer
	pdftotextCmd.Stdout = &txtOut

	if err := pdftotextCmd.Run(); err != nil {
		log.Printf("Error executing pdftotext command for page %d: %v", pageNumber, err)
	}
	pageText := txtOut.String()
	if trimmed := strings.TrimSpace(pageText); len(trimmed) > 0 {
		return trimmed, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

// extractTextWithTesseract extracts text using OCR when pdftotext fails
func (s *PDFService) extractTextWithTesseract(pdfPath string, pageNumber int) (string, error) {
	log.Println("Try extracting with tesseract")
	tempFolder, err := os.MkdirTemp(s.tempDir, "ocr-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempFolder)

	convertCmd := exec.Command("pdftoppm", "-f", strconv.Itoa(pageNumber), "-l", strconv.Itoa(pageNumber), "-png", pdfPath, filepath.Join(tempFolder, "page"))
	if err := convertCmd.Run(); err != nil {
		return "", fmt.Errorf("error converting page %d to image: %w", pageNumber, err)
	}
	pattern := filepath.Join(tempFolder, "page-*.png")
	files, err := filepath.Glob(pattern)
	if err != nil || len(files) == 0 {
		return "", fmt.Errorf("failed to read image files: %w", err)
	}
	imageFile := files[0]
	ocrCmd := exec.Command("tesseract",
		imageFile,
		"stdout",
		"-l", "eng",
		"--oem", "3", // Use LSTM OCR Engine Mode
		"--psm", "3", // Auto-detect page segmentation mode
	)
	var ocrOut bytes.Buffer
	ocrCmd.Stdout = &ocrOut
	if err := ocrCmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run tesseract: %w", err)
	}
	ocrText := ocrOut.String()
	if trimmed := strings.TrimSpace(ocrText); len(trimmed) > 0 {
		return trimmed, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

// getNumPages uses pdfinfo to get the total number of pages in a PDF file
func getNumPages(pdfPath string) (int, error) {
	cmd := exec.Command("pdfinfo", pdfPath)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %v", err)
	}

	scanner := bufio.NewScanner(&out)
	re := regexp.MustCompile(`Pages:\s+(\d+)`)
	for scanner.Scan() {
		line := scanner.Text()
		if matches := re.FindStringSubmatch(line); len(matches) == 2 {
			return strconv.Atoi(matches[1])
		}
	}

	return 0, fmt.Errorf("unable to determine page count from pdfinfo")
}

func (s *PDFService) cleanText(text string) string {
	replacements := map[string]string{
		"\u0000": "",   // Null character
		"\ufffd": "",   // Unicode replacement character
		"\u001b": "",   // Escape character
		"\r":     "",   // Carriage return
		"\f":     "\n", // Form feed to newline
		"  ":     " ",  // Multiple spaces to single space
	}
	cleaned := text
	for old, new := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, new)
	}

	return strings.TrimSpace(cleaned)
}

// Package imaging holds the image pipeline: locating and decoding embedded
// metadata (EXIF/TIFF/GPS, IPTC, XMP) for inspection, and rebuilding an image
// from its pixels alone for redaction. HEIC input is transcoded to JPEG first;
// a failed transcode is a warning, not an error.
package imaging

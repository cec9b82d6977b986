package types

// GPT and protective MBR layout constants
// Reference: UEFI Specification Part 1, Chapter 5
const (
	DefaultBlockSize = 512 // Bytes per logical block unless configured otherwise
	DefaultImageGiB  = 2   // Default image length in GiB

	// Protective MBR (block 0)
	ProtectiveRecordSize              = 512
	ProtectiveBootCodeOffset          = 16  // Start of the reserved area after the four leading u32 fields
	ProtectiveBootCodeSize            = 430 // Reserved bytes between the leading fields and the entry
	ProtectivePartitionOffset         = 446 // First legacy partition entry
	ProtectivePartitionEntrySize      = 16
	ProtectiveReservedOffset          = 462 // Remaining three legacy partition entries
	ProtectiveReservedSize            = 48
	ProtectiveSignatureOffset         = 510
	ProtectiveSignatureByte0     byte = 0x55
	ProtectiveSignatureByte1     byte = 0xAA

	// GPT header (block 1 and last block)
	GPTHeaderLBA                   = 1
	GPTHeaderSize                  = 92 // Bytes covered by the header CRC
	GPTHeaderCRCOffset             = 16
	GPTHeaderTableCRCOffset        = 88
	GPTPrimaryTableLBA             = 2
	GPTRevision             uint32 = 0x00010000 // On disk: 00 00 01 00
	GPTSignature                   = "EFI PART"

	// GPT partition entry array
	GPTEntrySize        = 128 // Size of each GPT partition entry (bytes)
	GPTTableLength      = 128 // Number of entries in the array
	GPTEntryNameSize    = 72  // 36 UTF-16LE code units
	GPTEntryNameOffset  = 56
	GPTMaxGUIDStringLen = 36 // Canonical 8-4-4-4-12 form
)

// ProtectivePartitionEntry is the fixed legacy partition entry written at offset 446
// of the protective record: status 0x00, CHS start 00/02/00, type 0xEE, CHS end
// 9B/F7/CC, starting LBA 1, size 0x00EE6B27.
var ProtectivePartitionEntry = [ProtectivePartitionEntrySize]byte{
	0x00, 0x00, 0x02, 0x00, 0xEE, 0x9B, 0xF7, 0xCC,
	0x01, 0x00, 0x00, 0x00, 0x27, 0x6B, 0xEE, 0x00,
}

// qumail is the command-line front end of the crypto engine: a
// one-time-pad level backed by the local key manager, an AES-128-CBC
// file mode, and an AES-128-GCM authenticated mode with hex-framed
// inputs and outputs.
package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/devalgupta404/qumail/pkg/aes128"
	"github.com/devalgupta404/qumail/pkg/cbc"
	"github.com/devalgupta404/qumail/pkg/gcm"
	"github.com/devalgupta404/qumail/pkg/hexio"
	"github.com/devalgupta404/qumail/pkg/km"
	"github.com/devalgupta404/qumail/pkg/otp"
)

var log = logrus.WithField("component", "qumail")

func main() {
	app := newApp(afero.NewOsFs())
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(fs afero.Fs) *cli.App {
	return &cli.App{
		Name:  "qumail",
		Usage: "encrypt and decrypt mail payloads",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable debug logging"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			otpCommand(fs),
			cbcCommand(fs),
			gcmCommand(fs),
			kmCommand(),
		},
	}
}

func otpCommand(fs afero.Fs) *cli.Command {
	kmFlag := &cli.StringFlag{Name: "km", Value: km.DefaultBaseURL, Usage: "key manager base URL"}
	return &cli.Command{
		Name:  "otp",
		Usage: "one-time pad with key material from the key manager",
		Subcommands: []*cli.Command{
			{
				Name: "encrypt",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Required: true, Usage: "plaintext file"},
					&cli.StringFlag{Name: "out", Required: true, Usage: "ciphertext file"},
					&cli.StringFlag{Name: "key-id-out", Required: true, Usage: "file to store the key id in"},
					kmFlag,
				},
				Action: func(c *cli.Context) error {
					pt, err := afero.ReadFile(fs, c.String("in"))
					if err != nil {
						return err
					}
					key, id, err := km.New(c.String("km")).NewKey(c.Context, len(pt))
					if err != nil {
						return err
					}
					ct, err := otp.Encrypt(pt, key)
					if err != nil {
						return err
					}
					if err := afero.WriteFile(fs, c.String("out"), ct, 0o600); err != nil {
						return err
					}
					if err := afero.WriteFile(fs, c.String("key-id-out"), []byte(id+"\n"), 0o600); err != nil {
						return err
					}
					log.WithField("key_id", id).Info("encrypted with one-time pad")
					return nil
				},
			},
			{
				Name: "decrypt",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Required: true, Usage: "ciphertext file"},
					&cli.StringFlag{Name: "out", Required: true, Usage: "plaintext file"},
					&cli.StringFlag{Name: "key-id", Required: true, Usage: "file holding the key id"},
					kmFlag,
				},
				Action: func(c *cli.Context) error {
					ct, err := afero.ReadFile(fs, c.String("in"))
					if err != nil {
						return err
					}
					idBytes, err := afero.ReadFile(fs, c.String("key-id"))
					if err != nil {
						return err
					}
					id := strings.TrimSpace(string(idBytes))
					key, err := km.New(c.String("km")).KeyByID(c.Context, id)
					if err != nil {
						return err
					}
					if len(key) != len(ct) {
						return fmt.Errorf("key length %d does not match ciphertext length %d", len(key), len(ct))
					}
					pt, err := otp.Decrypt(ct, key)
					if err != nil {
						return err
					}
					return afero.WriteFile(fs, c.String("out"), pt, 0o600)
				},
			},
		},
	}
}

// cbcCommand encrypts whole files; the IV is random unless given and is
// stored as the first block of the output file.
func cbcCommand(fs afero.Fs) *cli.Command {
	keyFlag := &cli.StringFlag{Name: "key", Required: true, Usage: "16-byte key file"}
	return &cli.Command{
		Name:  "cbc",
		Usage: "AES-128-CBC file encryption (unauthenticated)",
		Subcommands: []*cli.Command{
			{
				Name: "encrypt",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Required: true},
					&cli.StringFlag{Name: "out", Required: true},
					&cli.StringFlag{Name: "iv", Usage: "hex IV; random when omitted"},
					keyFlag,
				},
				Action: func(c *cli.Context) error {
					key, err := hexio.ReadExact(fs, c.String("key"), aes128.KeySize)
					if err != nil {
						return err
					}
					pt, err := afero.ReadFile(fs, c.String("in"))
					if err != nil {
						return err
					}
					iv := make([]byte, cbc.BlockSize)
					if s := c.String("iv"); s != "" {
						if iv, err = hexio.DecodeExact(s, cbc.BlockSize); err != nil {
							return err
						}
					} else if _, err := rand.Read(iv); err != nil {
						return err
					}
					ct, err := cbc.Encrypt(key, iv, pt)
					if err != nil {
						return err
					}
					return afero.WriteFile(fs, c.String("out"), append(iv, ct...), 0o600)
				},
			},
			{
				Name: "decrypt",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Required: true},
					&cli.StringFlag{Name: "out", Required: true},
					keyFlag,
				},
				Action: func(c *cli.Context) error {
					key, err := hexio.ReadExact(fs, c.String("key"), aes128.KeySize)
					if err != nil {
						return err
					}
					data, err := afero.ReadFile(fs, c.String("in"))
					if err != nil {
						return err
					}
					if len(data) < cbc.BlockSize {
						return fmt.Errorf("ciphertext file too short for an IV")
					}
					pt, err := cbc.Decrypt(key, data[:cbc.BlockSize], data[cbc.BlockSize:])
					if err != nil {
						return err
					}
					return afero.WriteFile(fs, c.String("out"), pt, 0o600)
				},
			},
		},
	}
}

func gcmCommand(fs afero.Fs) *cli.Command {
	keyFlag := &cli.StringFlag{Name: "key", Required: true, Usage: "hex 16-byte key"}
	ivFlag := &cli.StringFlag{Name: "iv", Required: true, Usage: "hex IV, 12 bytes preferred"}
	aadFlag := &cli.StringFlag{Name: "aad", Usage: "hex associated data"}
	return &cli.Command{
		Name:  "gcm",
		Usage: "AES-128-GCM authenticated encryption with hex framing",
		Subcommands: []*cli.Command{
			{
				Name: "encrypt",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Required: true, Usage: "plaintext file"},
					&cli.StringFlag{Name: "out", Required: true, Usage: "hex ciphertext file"},
					&cli.StringFlag{Name: "tag-out", Required: true, Usage: "hex tag file"},
					keyFlag, ivFlag, aadFlag,
				},
				Action: func(c *cli.Context) error {
					key, iv, aad, err := gcmInputs(c)
					if err != nil {
						return err
					}
					pt, err := afero.ReadFile(fs, c.String("in"))
					if err != nil {
						return err
					}
					ct, tag, err := gcm.Encrypt(key, iv, pt, aad)
					if err != nil {
						return err
					}
					if err := hexio.WriteHex(fs, c.String("out"), ct); err != nil {
						return err
					}
					return hexio.WriteHex(fs, c.String("tag-out"), tag[:])
				},
			},
			{
				Name: "decrypt",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Required: true, Usage: "hex ciphertext file"},
					&cli.StringFlag{Name: "tag", Required: true, Usage: "hex tag file"},
					&cli.StringFlag{Name: "out", Required: true, Usage: "plaintext file"},
					keyFlag, ivFlag, aadFlag,
				},
				Action: func(c *cli.Context) error {
					key, iv, aad, err := gcmInputs(c)
					if err != nil {
						return err
					}
					ct, err := hexio.ReadHex(fs, c.String("in"))
					if err != nil {
						return err
					}
					tagBytes, err := hexio.ReadHex(fs, c.String("tag"))
					if err != nil {
						return err
					}
					if len(tagBytes) != gcm.TagSize {
						return fmt.Errorf("tag is %d bytes, want %d", len(tagBytes), gcm.TagSize)
					}
					var tag [gcm.TagSize]byte
					copy(tag[:], tagBytes)
					pt, err := gcm.Decrypt(key, iv, ct, aad, tag)
					if err != nil {
						return err
					}
					return afero.WriteFile(fs, c.String("out"), pt, 0o600)
				},
			},
		},
	}
}

func gcmInputs(c *cli.Context) (key, iv, aad []byte, err error) {
	if key, err = hexio.DecodeExact(c.String("key"), aes128.KeySize); err != nil {
		return nil, nil, nil, err
	}
	if iv, err = hexio.Decode(c.String("iv")); err != nil {
		return nil, nil, nil, err
	}
	if s := c.String("aad"); s != "" {
		if aad, err = hexio.Decode(s); err != nil {
			return nil, nil, nil, err
		}
	}
	return key, iv, aad, nil
}

func kmCommand() *cli.Command {
	return &cli.Command{
		Name:  "km",
		Usage: "key manager operations",
		Subcommands: []*cli.Command{
			{
				Name: "health",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "km", Value: km.DefaultBaseURL, Usage: "key manager base URL"},
				},
				Action: func(c *cli.Context) error {
					h, err := km.New(c.String("km")).Health(c.Context)
					if err != nil {
						return err
					}
					fmt.Printf("%s %s: %s (%d keys stored)\n", h.Service, h.Version, h.Status, h.Metrics.StoredKeys)
					return nil
				},
			},
		},
	}
}

package installer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CredentialsFileName is the per-site login record dropped next to
// the WordPress tree.
const CredentialsFileName = "wp_credentials.txt"

// Credentials is the login record persisted for a provisioned site.
type Credentials struct {
	LoginURL string
	Username string
	Password string
	Email    string
}

// SaveCredentials writes the login record into the site directory.
func SaveCredentials(sitePath string, c Credentials) error {
	content := fmt.Sprintf(`WordPress Login Credentials
------------------------------------------
Login URL: %s
Username: %s
Password: %s
Email: %s
------------------------------------------
`, c.LoginURL, c.Username, c.Password, c.Email)
	path := filepath.Join(sitePath, CredentialsFileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// LoadCredentials reads a login record written by SaveCredentials.
func LoadCredentials(sitePath string) (Credentials, error) {
	file, err := os.Open(filepath.Join(sitePath, CredentialsFileName))
	if err != nil {
		return Credentials{}, err
	}
	defer file.Close()

	var c Credentials
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ": ")
		if !ok {
			continue
		}
		switch key {
		case "Login URL":
			c.LoginURL = value
		case "Username":
			c.Username = value
		case "Password":
			c.Password = value
		case "Email":
			c.Email = value
		}
	}
	if err := scanner.Err(); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

// PersistCredentials writes this site's login record.
func (i *Installer) PersistCredentials() error {
	return SaveCredentials(i.site.Path, Credentials{
		LoginURL: i.site.URL + "/wp-admin/",
		Username: i.inputs.AdminUser,
		Password: i.inputs.AdminPassword,
		Email:    i.inputs.AdminEmail,
	})
}

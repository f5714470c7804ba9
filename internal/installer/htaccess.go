package installer

import (
	"os"
	"path/filepath"
)

const htaccessBase = `# BEGIN WordPress
<IfModule mod_rewrite.c>
RewriteEngine On
RewriteBase /
RewriteRule ^index\.php$ - [L]
RewriteCond %{REQUEST_FILENAME} !-f
RewriteCond %{REQUEST_FILENAME} !-d
RewriteRule . /index.php [L]
</IfModule>
# END WordPress
`

const htaccessSSL = `
# BEGIN Force SSL
<IfModule mod_rewrite.c>
RewriteEngine On
RewriteCond %{HTTPS} off
RewriteRule ^(.*)$ https://%{HTTP_HOST}%{REQUEST_URI} [L,R=301]
</IfModule>
# END Force SSL
`

// EditHtaccess writes the rewrite rules for the site, with a
// forced-SSL redirect appended after the base block when the site was
// provisioned with SSL. Write failures are logged and swallowed: a
// missing .htaccess degrades permalinks, it does not invalidate the
// site.
func (i *Installer) EditHtaccess() error {
	content := htaccessBase
	if i.inputs.SSL {
		content = htaccessBase + htaccessSSL
	}
	path := filepath.Join(i.site.Path, ".htaccess")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		i.logger.Warnf("could not write .htaccess: %v", err)
		return nil
	}
	return nil
}

// HtaccessContent returns the rules EditHtaccess would write, for
// callers that need to inspect them.
func HtaccessContent(ssl bool) string {
	if ssl {
		return htaccessBase + htaccessSSL
	}
	return htaccessBase
}
